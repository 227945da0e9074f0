package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/borrowx/internal/models"
	"github.com/desertthunder/borrowx/internal/shared"
)

// BorrowingRepository persists the borrowing table detected for each video.
type BorrowingRepository struct {
	db *sql.DB
}

// NewBorrowingRepository creates a new [BorrowingRepository] with the given database connection
func NewBorrowingRepository(db *sql.DB) *BorrowingRepository {
	return &BorrowingRepository{db: db}
}

// ReplaceForVideo stores records as the complete borrowing table of a video.
//
// Existing rows for the video are removed first. Records without an ID are assigned one.
// Positions follow slice order, so [BorrowingRepository.ListByVideo] returns them unchanged.
func (r *BorrowingRepository) ReplaceForVideo(videoID string, records []models.Borrowing) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM borrowings WHERE video_id = ?`, videoID); err != nil {
		return fmt.Errorf("failed to clear borrowings: %w", err)
	}

	query := `
		INSERT INTO borrowings (
			id, video_id, position, title_license, title_piracy, license_link,
			time_license_start, time_license_finish, time_piracy_start, time_piracy_finish, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	for i := range records {
		b := &records[i]
		if b.ID == "" {
			b.ID = shared.GenerateID()
		}

		_, err := tx.Exec(query,
			b.ID,
			videoID,
			i,
			b.TitleLicense,
			b.TitlePiracy,
			b.LicenseLink,
			b.TimeLicenseStart,
			b.TimeLicenseFinish,
			b.TimePiracyStart,
			b.TimePiracyFinish,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert borrowing %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit borrowings: %w", err)
	}

	return nil
}

// ListByVideo returns the borrowings of a video in detector order.
// A video without borrowings yields an empty, non-nil slice.
func (r *BorrowingRepository) ListByVideo(videoID string) ([]models.Borrowing, error) {
	query := `
		SELECT id, title_license, title_piracy, license_link,
			time_license_start, time_license_finish, time_piracy_start, time_piracy_finish
		FROM borrowings
		WHERE video_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query borrowings: %w", err)
	}
	defer rows.Close()

	records := []models.Borrowing{}
	for rows.Next() {
		b := models.Borrowing{SchemaVersion: models.BorrowingV2}
		err := rows.Scan(
			&b.ID,
			&b.TitleLicense,
			&b.TitlePiracy,
			&b.LicenseLink,
			&b.TimeLicenseStart,
			&b.TimeLicenseFinish,
			&b.TimePiracyStart,
			&b.TimePiracyFinish,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan borrowing: %w", err)
		}
		records = append(records, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}
