package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"path"
	"strings"

	"github.com/desertthunder/borrowx/internal/shared"
)

// Object describes a stored payload.
type Object struct {
	Key         string
	Size        int64
	ContentType string
	Location    string
}

// Store persists payloads by key.
//
// Put is given the expected size, or -1 when it is unknown. A size mismatch is an error and
// leaves nothing behind. Delete of a missing key succeeds.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by cfg.
func New(ctx context.Context, cfg shared.StorageConfig) (Store, error) {
	switch cfg.Type {
	case "", shared.StorageLocal:
		return NewLocalStore(cfg.Path)
	case shared.StorageS3:
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("%w: unknown storage type %q", shared.ErrInvalidConfig, cfg.Type)
	}
}

// Key builds the object key for an uploaded video: a random identifier plus the lowercased extension.
func Key(id, name string) string {
	return id + strings.ToLower(path.Ext(name))
}

func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("%w: invalid key %q", shared.ErrInvalidInput, key)
	}
	for part := range strings.SplitSeq(key, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("%w: invalid key %q", shared.ErrInvalidInput, key)
		}
	}
	return nil
}

// HashingReader computes the SHA-256 and byte count of everything read through it.
type HashingReader struct {
	r io.Reader
	h hash.Hash
	n int64
}

// NewHashingReader wraps r.
func NewHashingReader(r io.Reader) *HashingReader {
	return &HashingReader{r: r, h: sha256.New()}
}

func (h *HashingReader) Read(p []byte) (int, error) {
	n, err := h.r.Read(p)
	if n > 0 {
		h.h.Write(p[:n])
		h.n += int64(n)
	}
	return n, err
}

// Sum returns the hex digest of the bytes read so far.
func (h *HashingReader) Sum() string {
	return hex.EncodeToString(h.h.Sum(nil))
}

// Len returns the number of bytes read so far.
func (h *HashingReader) Len() int64 {
	return h.n
}
