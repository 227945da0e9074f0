package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/borrowx/internal/shared"
)

// Video is an uploaded file accepted by the reference API.
//
// FileID is the client-side identifier sent with the upload. It is kept for correlation only and is not unique.
type Video struct {
	id          string
	sequence    int
	fileID      string
	title       string
	extension   string
	contentType string
	size        int64
	sha256      string
	storageKey  string
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

// NewVideo creates a Video for the named upload. The ID is assigned by the repository.
func NewVideo(fileID, title, contentType string, size int64) *Video {
	now := time.Now()
	return &Video{
		fileID:      fileID,
		title:       title,
		extension:   strings.ToLower(filepath.Ext(title)),
		contentType: contentType,
		size:        size,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (v *Video) ID() string { return v.id }
func (v *Video) Sequence() int { return v.sequence }
func (v *Video) FileID() string { return v.fileID }
func (v *Video) Title() string { return v.title }
func (v *Video) Extension() string { return v.extension }
func (v *Video) ContentType() string { return v.contentType }
func (v *Video) Size() int64 { return v.size }
func (v *Video) SHA256() string { return v.sha256 }
func (v *Video) StorageKey() string { return v.storageKey }
func (v *Video) CreatedAt() time.Time { return v.createdAt }
func (v *Video) UpdatedAt() time.Time { return v.updatedAt }
func (v *Video) DeletedAt() *time.Time { return v.deletedAt }

func (v *Video) SetID(id string) { v.id = id }
func (v *Video) SetSequence(seq int) { v.sequence = seq }
func (v *Video) SetSHA256(sum string) { v.sha256 = sum }
func (v *Video) SetStorageKey(key string) { v.storageKey = key }
func (v *Video) SetSize(size int64) { v.size = size }
func (v *Video) SetCreatedAt(t time.Time) { v.createdAt = t }
func (v *Video) SetUpdatedAt(t time.Time) { v.updatedAt = t }
func (v *Video) SetDeletedAt(t *time.Time) { v.deletedAt = t }
func (v *Video) SetContentType(ct string) { v.contentType = ct }

// Validate checks that the stored payload is described well enough to be served back.
func (v *Video) Validate() error {
	switch {
	case v.id == "":
		return fmt.Errorf("%w: video id is required", shared.ErrInvalidInput)
	case v.title == "":
		return fmt.Errorf("%w: video title is required", shared.ErrInvalidInput)
	case v.size < 0:
		return fmt.Errorf("%w: video size must not be negative", shared.ErrInvalidInput)
	case v.storageKey == "":
		return fmt.Errorf("%w: video storage key is required", shared.ErrInvalidInput)
	}
	return nil
}
