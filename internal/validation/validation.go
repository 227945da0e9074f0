// Package validation gates a batch of candidate files before anything is staged.
//
// The rules are checked in a fixed order (count, then type and size per file) and collection stops after
// the first file that leaves any error behind. [Rules.Check] is pure: it reports errors and never mutates.
package validation

import (
	"errors"
	"fmt"
	"slices"

	"github.com/desertthunder/borrowx/internal/shared"
)

var (
	// ErrTooManyFiles is reported once per batch when staged plus incoming files exceed the limit.
	ErrTooManyFiles = errors.New("too many files")
	// ErrFileType is reported per file whose MIME type is not allowed.
	ErrFileType = errors.New("unsupported file type")
	// ErrFileTooLarge is reported per file above the size limit.
	ErrFileTooLarge = errors.New("file is too large")
)

// Descriptor is the part of a candidate file the rules look at.
type Descriptor struct {
	Name string
	Size int64
	Type string
}

// Rules holds the limits a batch is checked against.
type Rules struct {
	MaxFiles     int
	MaxFileSize  int64
	AllowedTypes []string
}

// DefaultRules returns the build-time limits from package shared.
func DefaultRules() Rules {
	return Rules{
		MaxFiles:     shared.MaxFilesToUpload,
		MaxFileSize:  shared.MaxFileSize,
		AllowedTypes: slices.Clone(shared.AllowedFileTypes),
	}
}

// RulesFromConfig builds Rules from the client section of the configuration.
func RulesFromConfig(c shared.ClientConfig) Rules {
	return Rules{
		MaxFiles:     c.MaxFiles,
		MaxFileSize:  c.MaxFileSize,
		AllowedTypes: slices.Clone(c.AllowedTypes),
	}
}

// IsAllowedType reports whether mime is in the allow-list.
func (r Rules) IsAllowedType(mime string) bool {
	return slices.Contains(r.AllowedTypes, mime)
}

// IsAllowedSize reports whether size is within the limit. A file exactly at the limit is accepted.
func (r Rules) IsAllowedSize(size int64) bool {
	return size <= r.MaxFileSize
}

// Check validates a batch against the rules given the number of files already staged.
//
// The count error is recorded first and does not stop per-file checks by itself, but since checking stops
// after any file once an error exists, a count violation means only the first file is inspected.
// An empty result means the batch may be staged.
func (r Rules) Check(staged int, batch []Descriptor) []error {
	var errs []error

	if staged+len(batch) > r.MaxFiles {
		errs = append(errs, fmt.Errorf("%w: at most %d files can be uploaded", ErrTooManyFiles, r.MaxFiles))
	}

	for _, d := range batch {
		if !r.IsAllowedType(d.Type) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrFileType, d.Name))
		}

		if !r.IsAllowedSize(d.Size) {
			errs = append(errs, fmt.Errorf("%w: %s exceeds the maximum size", ErrFileTooLarge, d.Name))
		}

		if len(errs) > 0 {
			break
		}
	}

	return errs
}
