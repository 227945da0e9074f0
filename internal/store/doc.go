// Package store holds the session state of the upload client.
//
// Two explicit state containers are owned by the composition root and passed to whoever needs them:
//   - [FileStore] : staged files, the batch-level loading flag and the error list. It also orchestrates
//     the upload workflow in [FileStore.Add].
//   - [BorrowingStore] : append-only borrowing results. Only [FileStore] writes to it.
//
// # Add Workflow
//
// A batch is validated as a whole, then staged in one update, then uploaded with one request per file.
// Requests run concurrently and are joined before the outcome is decided:
//   - all succeed: every response's borrowings are appended to the [BorrowingStore] in completion order
//   - any fails: every file of the batch is removed from the staged collection, including files whose
//     upload already succeeded
//
// The loading flag is cleared once every request has settled, whatever the outcome.
//
// # Concurrency
//
// Stores are shared between the caller, the upload goroutines and the progress consumer, so each one
// serializes mutations behind a mutex. Progress updates are structural: they touch one record by identifier.
// Read methods return copies.
//
// # Notifications
//
// Every error and the batch success message go to a [Notifier]. Add also returns the error so that
// non-interactive callers can set an exit status.
package store
