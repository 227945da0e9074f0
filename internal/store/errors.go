package store

import (
	"errors"
	"strings"
)

// SuccessMessage is sent to the [Notifier] when a whole batch has uploaded.
const SuccessMessage = "all files uploaded successfully"

// ValidationError is returned by [FileStore.Add] when the batch was rejected before staging.
type ValidationError struct {
	Errs []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual rule violations to errors.Is.
func (e *ValidationError) Unwrap() []error {
	return e.Errs
}

// TransportError is returned by [FileStore.Add] when an upload failed and the batch was rolled back.
type TransportError struct {
	Err error
	// RolledBack holds the identifiers removed from the staged collection.
	RolledBack []string
}

func (e *TransportError) Error() string {
	return "upload failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err came from batch validation.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
