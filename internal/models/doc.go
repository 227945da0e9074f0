// Package models defines the domain types shared by the upload client and the reference API.
//
// The package contains three groups of types:
//
// 1. Client session types: owned by the stores in package store
//   - [Candidate] : A file selected by the user, not yet validated
//   - [UploadFile] : A staged file with identifier, progress and status flags
//   - [Payload] : Handle to the raw bytes of a file
//
// 2. Wire types: exchanged with the upload endpoint
//   - [UploadResponse] : The JSON body returned for every upload
//   - [Borrowing] : One detected reuse of licensed material, in the version 2 schema.
//     Version 1 payloads are migrated on decode, see [Borrowing.UnmarshalJSON]
//   - [OperationInfo] and [Fault] : Progress and failure reporting for long-running server work
//
// 3. Persistent entities: database-backed models used by the reference API
//   - [Video] : An uploaded video with its storage key and checksum
//
// Persistent entities implement the [Model] interface and are stored through a [Repository].
package models
