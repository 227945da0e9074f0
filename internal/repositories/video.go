package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/borrowx/internal/models"
	"github.com/desertthunder/borrowx/internal/shared"
)

// VideoRepository implements [models.Repository] for uploaded [models.Video] records.
type VideoRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Video] = (*VideoRepository)(nil)

// NewVideoRepository creates a new [VideoRepository] with the given database connection
func NewVideoRepository(db *sql.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

const videoColumns = `id, sequence, file_id, title, extension, content_type, size, sha256, storage_key, created_at, updated_at, deleted_at`

// Create inserts a new video with generated ID and sequence.
// The ID is left unset on the model if the insert fails.
func (r *VideoRepository) Create(video *models.Video) error {
	sequence, err := NextSequence(r.db, "videos")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	video.SetID(id)
	video.SetSequence(sequence)

	if err := video.Validate(); err != nil {
		video.SetID("")
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO videos (id, sequence, file_id, title, extension, content_type, size, sha256, storage_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		video.FileID(),
		video.Title(),
		video.Extension(),
		video.ContentType(),
		video.Size(),
		video.SHA256(),
		video.StorageKey(),
		video.CreatedAt(),
		video.UpdatedAt(),
	)
	if err != nil {
		video.SetID("")
		return fmt.Errorf("failed to insert video: %w", err)
	}

	return nil
}

// Get retrieves a video by ID, excluding soft-deleted videos
func (r *VideoRepository) Get(id string) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = ? AND deleted_at IS NULL`

	video, err := scanVideo(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: video %s", shared.ErrNotFound, id)
	}
	return video, err
}

// Update modifies the mutable fields of an existing video
func (r *VideoRepository) Update(video *models.Video) error {
	if err := video.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	video.SetUpdatedAt(now)

	query := `
		UPDATE videos
		SET content_type = ?, size = ?, sha256 = ?, storage_key = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, video.ContentType(), video.Size(), video.SHA256(), video.StorageKey(), now, video.ID())
	if err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}

	return expectOne(result, "video", video.ID())
}

// Delete soft-deletes a video by ID
func (r *VideoRepository) Delete(id string) error {
	query := `UPDATE videos SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}

	return expectOne(result, "video", id)
}

// List retrieves videos matching the criteria "file_id" and "sha256", ordered by sequence.
func (r *VideoRepository) List(criteria map[string]any) ([]*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE deleted_at IS NULL`
	args := []any{}

	if fileID, ok := criteria["file_id"].(string); ok && fileID != "" {
		query += " AND file_id = ?"
		args = append(args, fileID)
	}

	if sum, ok := criteria["sha256"].(string); ok && sum != "" {
		query += " AND sha256 = ?"
		args = append(args, sum)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	var videos []*models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return videos, nil
}

// scanVideo scans a single row from either [sql.Row] or [sql.Rows]
func scanVideo(row scanner) (*models.Video, error) {
	var (
		id          string
		sequence    int
		fileID      string
		title       string
		extension   string
		contentType string
		size        int64
		sum         string
		storageKey  string
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := row.Scan(&id, &sequence, &fileID, &title, &extension, &contentType, &size, &sum, &storageKey, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan video: %w", err)
	}

	video := models.NewVideo(fileID, title, contentType, size)
	video.SetID(id)
	video.SetSequence(sequence)
	video.SetSHA256(sum)
	video.SetStorageKey(storageKey)
	video.SetCreatedAt(createdAt)
	video.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		video.SetDeletedAt(&deletedAt.Time)
	}

	return video, nil
}
