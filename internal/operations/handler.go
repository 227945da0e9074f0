package operations

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gabriel-vasile/mimetype"

	"github.com/desertthunder/borrowx/internal/models"
	"github.com/desertthunder/borrowx/internal/shared"
	"github.com/desertthunder/borrowx/internal/storage"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
)

// Fault codes recorded on operations.
const (
	FaultUnsupportedType = "UnsupportedType"
	FaultTooLarge        = "FileTooLarge"
	FaultStorage         = "StorageFailed"
	FaultNotImplemented  = "NotImplemented"
	FaultDetection       = "DetectionFailed"
)

// sniffLen matches the default read limit of mimetype.
const sniffLen = 3072

// AllowedExtensions lists the file name extensions accepted for upload.
var AllowedExtensions = []string{".mp4", ".mov"}

// LoadVideoCommand is one uploaded file. Size is -1 when the client did not declare it.
type LoadVideoCommand struct {
	FileID      string
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Result is the outcome of a handled upload.
type Result struct {
	Operation  *models.OperationInfo
	Video      *models.Video
	Borrowings []models.Borrowing
}

type VideoRepository interface {
	Create(video *models.Video) error
	Get(id string) (*models.Video, error)
	Delete(id string) error
}

type OperationRepository interface {
	Create(op *models.OperationInfo) error
	Get(id string) (*models.OperationInfo, error)
	Update(op *models.OperationInfo) error
}

type BorrowingRepository interface {
	ReplaceForVideo(videoID string, records []models.Borrowing) error
	ListByVideo(videoID string) ([]models.Borrowing, error)
}

// HandlerOpts configures a [Handler]. Store and the repositories are required.
type HandlerOpts struct {
	Store        storage.Store
	Videos       VideoRepository
	Operations   OperationRepository
	Borrowings   BorrowingRepository
	Detector     Detector
	AllowedTypes []string
	MaxSize      int64
	Logger       *log.Logger
	Now          func() time.Time
}

// Handler processes uploads and answers queries about their results.
type Handler struct {
	store        storage.Store
	videos       VideoRepository
	operations   OperationRepository
	borrowings   BorrowingRepository
	detector     Detector
	allowedTypes []string
	maxSize      int64
	logger       *log.Logger
	now          func() time.Time
}

// NewHandler creates a [Handler]. A nil Detector means [UnimplementedDetector];
// zero limits fall back to the shared build-time limits.
func NewHandler(opts HandlerOpts) *Handler {
	h := &Handler{
		store:        opts.Store,
		videos:       opts.Videos,
		operations:   opts.Operations,
		borrowings:   opts.Borrowings,
		detector:     opts.Detector,
		allowedTypes: opts.AllowedTypes,
		maxSize:      opts.MaxSize,
		logger:       opts.Logger,
		now:          opts.Now,
	}

	if h.detector == nil {
		h.detector = UnimplementedDetector{}
	}
	if len(h.allowedTypes) == 0 {
		h.allowedTypes = shared.AllowedFileTypes
	}
	if h.maxSize <= 0 {
		h.maxSize = shared.MaxFileSize
	}
	if h.logger == nil {
		h.logger = log.New(io.Discard)
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// Handle stores the uploaded video and runs detection on it.
//
// The returned error wraps [ErrUnsupportedType], [ErrTooLarge] or [shared.ErrStorage] for rejected or
// failed uploads. Once the operation record exists it is returned in the [Result] even on failure.
func (h *Handler) Handle(ctx context.Context, cmd LoadVideoCommand) (*Result, error) {
	op := models.NewOperationInfo(shared.GenerateID(), models.OperationLoadVideoToDatabase, h.now())
	if err := h.operations.Create(op); err != nil {
		return nil, fmt.Errorf("failed to create operation: %w", err)
	}

	logger := h.logger.With("operation_id", op.ID, "file_id", cmd.FileID, "name", cmd.Name)
	result := &Result{Operation: op}

	if cmd.Size > h.maxSize {
		return result, h.fail(op, FaultTooLarge, fmt.Errorf("%w: %s", ErrTooLarge, cmd.Name))
	}

	if err := checkExtension(cmd.Name); err != nil {
		return result, h.fail(op, FaultUnsupportedType, err)
	}

	header := make([]byte, sniffLen)
	n, err := io.ReadFull(cmd.Body, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return result, h.fail(op, FaultStorage, fmt.Errorf("%w: failed to read upload: %w", shared.ErrStorage, err))
	}
	header = header[:n]

	detected := mimetype.Detect(header)
	if !h.isAllowed(detected) {
		err := fmt.Errorf("%w: %s is %s", ErrUnsupportedType, cmd.Name, detected.String())
		return result, h.fail(op, FaultUnsupportedType, err)
	}

	contentType := strings.SplitN(detected.String(), ";", 2)[0]
	body := io.MultiReader(bytes.NewReader(header), cmd.Body)
	hashed := storage.NewHashingReader(io.LimitReader(body, h.maxSize+1))

	key := storage.Key(shared.GenerateID(), cmd.Name)
	obj, err := h.store.Put(ctx, key, hashed, cmd.Size, contentType)
	if err != nil {
		return result, h.fail(op, FaultStorage, err)
	}

	if hashed.Len() > h.maxSize {
		h.cleanup(ctx, logger, key, "")
		return result, h.fail(op, FaultTooLarge, fmt.Errorf("%w: %s", ErrTooLarge, cmd.Name))
	}

	video := models.NewVideo(cmd.FileID, cmd.Name, contentType, obj.Size)
	video.SetStorageKey(obj.Key)
	video.SetSHA256(hashed.Sum())

	if err := h.videos.Create(video); err != nil {
		h.cleanup(ctx, logger, key, "")
		return result, h.fail(op, FaultStorage, fmt.Errorf("failed to record video: %w", err))
	}

	result.Video = video
	op.VideoID = video.ID()
	logger.Info("stored video", "video_id", video.ID(), "key", key, "size", obj.Size, "type", contentType)

	records, err := h.detector.Detect(ctx, video)
	switch {
	case errors.Is(err, shared.ErrNotImplemented):
		logger.Warn("borrowing detection is not implemented", "video_id", video.ID())
		op.AddFault(models.NewFault(FaultNotImplemented, "borrowing detection is not implemented", nil), h.now())
		records = []models.Borrowing{}
	case err != nil:
		h.cleanup(ctx, logger, key, video.ID())
		return result, h.fail(op, FaultDetection, fmt.Errorf("failed to detect borrowings: %w", err))
	}

	if records == nil {
		records = []models.Borrowing{}
	}

	if err := h.borrowings.ReplaceForVideo(video.ID(), records); err != nil {
		h.cleanup(ctx, logger, key, video.ID())
		return result, h.fail(op, FaultStorage, fmt.Errorf("failed to record borrowings: %w", err))
	}

	op.Complete(h.now())
	if err := h.operations.Update(op); err != nil {
		return result, fmt.Errorf("failed to update operation: %w", err)
	}

	result.Borrowings = records
	logger.Info("upload processed", "video_id", video.ID(), "borrowings", len(records))
	return result, nil
}

// Operation returns the stored state of an operation.
func (h *Handler) Operation(id string) (*models.OperationInfo, error) {
	return h.operations.Get(id)
}

// Borrowings returns the borrowing table of a video, or an error wrapping [shared.ErrNotFound]
// for unknown or deleted videos.
func (h *Handler) Borrowings(videoID string) ([]models.Borrowing, error) {
	if _, err := h.videos.Get(videoID); err != nil {
		return nil, err
	}
	return h.borrowings.ListByVideo(videoID)
}

// Video returns an uploaded video.
func (h *Handler) Video(id string) (*models.Video, error) {
	return h.videos.Get(id)
}

func (h *Handler) isAllowed(m *mimetype.MIME) bool {
	for _, allowed := range h.allowedTypes {
		if m.Is(allowed) {
			return true
		}
	}
	return false
}

func checkExtension(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(AllowedExtensions, ext) {
		return fmt.Errorf("%w: extension %q of %s", ErrUnsupportedType, ext, name)
	}
	return nil
}

// fail marks op as dead with a fault built from err and returns err.
func (h *Handler) fail(op *models.OperationInfo, code string, err error) error {
	op.Fail(models.NewFault(code, err.Error(), nil), h.now())
	if updateErr := h.operations.Update(op); updateErr != nil {
		h.logger.Error("failed to update operation", "operation_id", op.ID, "error", updateErr)
	}
	h.logger.Warn("upload failed", "operation_id", op.ID, "fault", code, "error", err)
	return err
}

// cleanup removes a stored object and, if recorded, its video row.
func (h *Handler) cleanup(ctx context.Context, logger *log.Logger, key, videoID string) {
	ctx = context.WithoutCancel(ctx)

	if err := h.store.Delete(ctx, key); err != nil {
		logger.Error("failed to clean up after failed upload", "key", key, "error", err)
	} else {
		logger.Debug("cleaned up after failed upload", "key", key)
	}

	if videoID == "" {
		return
	}
	if err := h.videos.Delete(videoID); err != nil {
		logger.Error("failed to remove video record", "video_id", videoID, "error", err)
	}
}
