package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/borrowx/internal/models"
	"github.com/desertthunder/borrowx/internal/shared"
)

// OperationRepository persists [models.OperationInfo] records.
//
// Operations are never deleted; a finished operation stays queryable by ID.
type OperationRepository struct {
	db *sql.DB
}

// NewOperationRepository creates a new [OperationRepository] with the given database connection
func NewOperationRepository(db *sql.DB) *OperationRepository {
	return &OperationRepository{db: db}
}

// Create inserts a new operation. A missing ID is generated.
func (r *OperationRepository) Create(op *models.OperationInfo) error {
	if op.ID == "" {
		op.ID = shared.GenerateID()
	}

	faults, err := op.MarshalFaults()
	if err != nil {
		return fmt.Errorf("failed to encode faults: %w", err)
	}

	query := `
		INSERT INTO operations (id, type, status, video_id, faults, created_at, last_update_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, op.ID, string(op.Type), string(op.Status), nullString(op.VideoID), nullBytes(faults), op.CreatedAt, op.LastUpdateAt)
	if err != nil {
		return fmt.Errorf("failed to insert operation: %w", err)
	}

	return nil
}

// Get retrieves an operation by ID
func (r *OperationRepository) Get(id string) (*models.OperationInfo, error) {
	query := `
		SELECT id, type, status, video_id, faults, created_at, last_update_at
		FROM operations
		WHERE id = ?
	`

	var (
		op      models.OperationInfo
		kind    string
		status  string
		videoID sql.NullString
		faults  sql.NullString
	)

	err := r.db.QueryRow(query, id).Scan(&op.ID, &kind, &status, &videoID, &faults, &op.CreatedAt, &op.LastUpdateAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: operation %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get operation: %w", err)
	}

	op.Type = models.OperationType(kind)
	op.Status = models.OperationStatus(status)
	op.VideoID = videoID.String

	if faults.Valid && faults.String != "" {
		if err := json.Unmarshal([]byte(faults.String), &op.Faults); err != nil {
			return nil, fmt.Errorf("failed to decode faults: %w", err)
		}
	}

	return &op, nil
}

// Update writes the status, video link and faults of an existing operation
func (r *OperationRepository) Update(op *models.OperationInfo) error {
	faults, err := op.MarshalFaults()
	if err != nil {
		return fmt.Errorf("failed to encode faults: %w", err)
	}

	if op.LastUpdateAt.IsZero() {
		op.LastUpdateAt = time.Now()
	}

	query := `
		UPDATE operations
		SET status = ?, video_id = ?, faults = ?, last_update_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, string(op.Status), nullString(op.VideoID), nullBytes(faults), op.LastUpdateAt, op.ID)
	if err != nil {
		return fmt.Errorf("failed to update operation: %w", err)
	}

	return expectOne(result, "operation", op.ID)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullBytes(b []byte) sql.NullString {
	return sql.NullString{String: string(b), Valid: b != nil}
}
