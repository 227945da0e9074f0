package models

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// Payload is a handle to the raw contents of a file. Open may be called more than once.
type Payload interface {
	Open() (io.ReadCloser, error)
}

// FilePayload reads from a file on disk.
type FilePayload string

// Open opens the file.
func (p FilePayload) Open() (io.ReadCloser, error) {
	return os.Open(string(p))
}

// BytesPayload serves an in-memory buffer.
type BytesPayload []byte

// Open returns a reader over the buffer.
func (p BytesPayload) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(p)), nil
}

// Candidate is a file the user selected for upload. It has no identifier until staged.
type Candidate struct {
	Name    string
	Size    int64
	Type    string
	Payload Payload
}

// CandidateFromPath describes the file at path, detecting its MIME type from content.
func CandidateFromPath(path string) (Candidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Candidate{}, fmt.Errorf("%s is a directory", path)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to detect type of %s: %w", path, err)
	}

	return Candidate{
		Name:    filepath.Base(path),
		Size:    info.Size(),
		Type:    mtype.String(),
		Payload: FilePayload(path),
	}, nil
}

// UploadFile is a staged file. ID is assigned when the file is staged and is never reused.
//
// Progress is a percentage in [0, 100]. Error is reserved for per-file failure marking and stays false:
// a failed batch is removed rather than marked.
type UploadFile struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Size     int64   `json:"size"`
	Type     string  `json:"type"`
	Progress int     `json:"progress"`
	Error    bool    `json:"error"`
	Success  bool    `json:"success"`
	Payload  Payload `json:"-"`
}

// UploadResponse is the body returned by the upload endpoint.
type UploadResponse struct {
	Message   string      `json:"message"`
	Status    int         `json:"status"`
	Borrowing []Borrowing `json:"borrowing"`
}
