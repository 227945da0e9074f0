// Package operations runs the server side of an upload.
//
// [Handler.Handle] takes a [LoadVideoCommand] through validation, storage, persistence and
// borrowing detection, tracking progress in a [models.OperationInfo]. Detection itself is
// delegated to a [Detector]; the default [UnimplementedDetector] finds nothing and records a
// NotImplemented fault instead.
package operations
