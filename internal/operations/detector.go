package operations

import (
	"context"

	"github.com/desertthunder/borrowx/internal/models"
	"github.com/desertthunder/borrowx/internal/shared"
)

// Detector finds licensed material reused inside an uploaded video.
type Detector interface {
	Detect(ctx context.Context, video *models.Video) ([]models.Borrowing, error)
}

// UnimplementedDetector is used when no matching engine is configured.
type UnimplementedDetector struct{}

func (UnimplementedDetector) Detect(context.Context, *models.Video) ([]models.Borrowing, error) {
	return nil, shared.ErrNotImplemented
}

// StaticDetector reports the same borrowings for every video.
// Records with an empty TitlePiracy are attributed to the uploaded video.
type StaticDetector struct {
	Records []models.Borrowing
}

func (d StaticDetector) Detect(ctx context.Context, video *models.Video) ([]models.Borrowing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]models.Borrowing, len(d.Records))
	for i, b := range d.Records {
		b.ID = ""
		if b.TitlePiracy == "" {
			b.TitlePiracy = video.Title()
		}
		b.SchemaVersion = models.BorrowingV2
		records[i] = b
	}
	return records, nil
}

// DetectorFunc adapts a function to [Detector].
type DetectorFunc func(ctx context.Context, video *models.Video) ([]models.Borrowing, error)

func (f DetectorFunc) Detect(ctx context.Context, video *models.Video) ([]models.Borrowing, error) {
	return f(ctx, video)
}
