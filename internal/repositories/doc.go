// Package repositories implements SQLite persistence for the reference API.
//
// Key Implementations:
//   - [VideoRepository] : Uploaded videos with soft deletes and sequence numbers
//   - [OperationRepository] : Operation state with faults stored as a JSON array
//   - [BorrowingRepository] : Borrowing tables per video, kept in detector order
//
// Sequence numbers provide stable, human-readable ordering independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
//
// Lookups of missing rows return errors wrapping [shared.ErrNotFound].
package repositories
