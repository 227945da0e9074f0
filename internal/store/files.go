package store

import (
	"context"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/borrowx/internal/models"
	"github.com/desertthunder/borrowx/internal/services"
	"github.com/desertthunder/borrowx/internal/shared"
	"github.com/desertthunder/borrowx/internal/validation"
	"golang.org/x/sync/errgroup"
)

// Uploader sends one staged file and reports its progress. [services.UploadService] implements it.
type Uploader interface {
	Upload(ctx context.Context, file models.UploadFile, path string, progress chan<- services.Progress) (*models.UploadResponse, error)
}

// FileStoreOpts contains the collaborators of a [FileStore].
type FileStoreOpts struct {
	Uploader   Uploader
	Borrowings *BorrowingStore
	Rules      validation.Rules
	Notifier   Notifier
	UploadPath string
	Logger     *log.Logger
	// OnChange runs after every mutation, outside the lock.
	OnChange func()
}

// FileStore is the single source of truth for staged uploads.
type FileStore struct {
	mu      sync.RWMutex
	files   []models.UploadFile
	loading bool
	errors  []string

	uploader   Uploader
	borrowings *BorrowingStore
	rules      validation.Rules
	notifier   Notifier
	uploadPath string
	logger     *log.Logger
	onChange   func()
}

// NewFileStore creates an empty store. Zero-valued options fall back to defaults: build-time rules,
// [shared.UploadPath], [NopNotifier] and a fresh [BorrowingStore].
func NewFileStore(opts FileStoreOpts) *FileStore {
	if opts.Borrowings == nil {
		opts.Borrowings = NewBorrowingStore(nil)
	}
	if opts.Rules.MaxFiles == 0 && opts.Rules.MaxFileSize == 0 && opts.Rules.AllowedTypes == nil {
		opts.Rules = validation.DefaultRules()
	}
	if opts.Notifier == nil {
		opts.Notifier = NopNotifier{}
	}
	if opts.UploadPath == "" {
		opts.UploadPath = shared.UploadPath
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return &FileStore{
		uploader:   opts.Uploader,
		borrowings: opts.Borrowings,
		rules:      opts.Rules,
		notifier:   opts.Notifier,
		uploadPath: opts.UploadPath,
		logger:     opts.Logger,
		onChange:   opts.OnChange,
	}
}

// Borrowings returns the result store this store writes into.
func (s *FileStore) Borrowings() *BorrowingStore {
	return s.borrowings
}

// Add validates, stages and uploads a batch.
//
// A rejected batch stages nothing and returns a *[ValidationError]. A failed upload removes every file of
// the batch and returns a *[TransportError]. Both are also sent to the [Notifier]. Add blocks until every
// request of the batch has settled.
func (s *FileStore) Add(ctx context.Context, candidates []models.Candidate) error {
	batch, err := s.stage(candidates)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		s.changed()
	}()

	responses, err := s.upload(ctx, batch)
	if err != nil {
		ids := make([]string, len(batch))
		for i, f := range batch {
			ids[i] = f.ID
		}

		s.logger.Error("batch upload failed, rolling back", "files", len(ids), "error", err)
		s.notifier.Error(err.Error())
		s.remove(ids)
		return &TransportError{Err: err, RolledBack: ids}
	}

	for _, resp := range responses {
		s.borrowings.AddVideoBorrowings(resp.Borrowing)
	}

	s.logger.Info("batch uploaded", "files", len(batch), "responses", len(responses))
	s.notifier.Success(SuccessMessage)
	return nil
}

// stage validates candidates against the current collection and appends them in one update.
// Validation and staging share the lock so concurrent batches cannot both pass the count check.
func (s *FileStore) stage(candidates []models.Candidate) ([]models.UploadFile, error) {
	descs := make([]validation.Descriptor, len(candidates))
	for i, c := range candidates {
		descs[i] = validation.Descriptor{Name: c.Name, Size: c.Size, Type: c.Type}
	}

	s.mu.Lock()
	if errs := s.rules.Check(len(s.files), descs); len(errs) > 0 {
		for _, e := range errs {
			s.errors = append(s.errors, e.Error())
		}
		s.mu.Unlock()

		for _, e := range errs {
			s.notifier.Error(e.Error())
		}
		s.logger.Warn("batch rejected", "files", len(candidates), "errors", len(errs))
		s.changed()
		return nil, &ValidationError{Errs: errs}
	}

	if len(candidates) == 0 {
		s.mu.Unlock()
		return nil, nil
	}

	batch := make([]models.UploadFile, len(candidates))
	for i, c := range candidates {
		batch[i] = models.UploadFile{
			ID:      shared.GenerateID(),
			Name:    c.Name,
			Size:    c.Size,
			Type:    c.Type,
			Payload: c.Payload,
		}
	}

	s.files = append(s.files, batch...)
	s.errors = nil
	s.loading = true
	s.mu.Unlock()

	s.logger.Debug("batch staged", "files", len(batch))
	s.changed()
	return batch, nil
}

// upload runs one request per file and joins them. Responses are collected in completion order.
func (s *FileStore) upload(ctx context.Context, batch []models.UploadFile) ([]*models.UploadResponse, error) {
	progress := make(chan services.Progress)
	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		for p := range progress {
			s.SetProgress(p.FileID, p.Percent)
		}
	}()

	var (
		g         errgroup.Group
		mu        sync.Mutex
		responses = make([]*models.UploadResponse, 0, len(batch))
	)

	for _, file := range batch {
		g.Go(func() error {
			resp, err := s.uploader.Upload(ctx, file, s.uploadPath, progress)
			if err != nil {
				s.logger.Debug("upload failed", "file_id", file.ID, "name", file.Name, "error", err)
				return err
			}

			s.SetSuccess(file.ID, true)

			mu.Lock()
			responses = append(responses, resp)
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	close(progress)
	<-consumed

	return responses, err
}

// SetProgress updates one file's progress. Unknown identifiers are ignored; the value is not checked.
func (s *FileStore) SetProgress(id string, progress int) {
	if s.update(id, func(f *models.UploadFile) { f.Progress = progress }) {
		s.changed()
	}
}

// SetSuccess updates one file's success flag. Unknown identifiers are ignored.
func (s *FileStore) SetSuccess(id string, ok bool) {
	if s.update(id, func(f *models.UploadFile) { f.Success = ok }) {
		s.changed()
	}
}

func (s *FileStore) update(id string, fn func(f *models.UploadFile)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.files, func(f models.UploadFile) bool { return f.ID == id })
	if i < 0 {
		return false
	}
	fn(&s.files[i])
	return true
}

func (s *FileStore) remove(ids []string) {
	s.mu.Lock()
	s.files = slices.DeleteFunc(s.files, func(f models.UploadFile) bool {
		return slices.Contains(ids, f.ID)
	})
	s.mu.Unlock()

	s.changed()
}

// Files returns a copy of the staged collection in staging order.
func (s *FileStore) Files() []models.UploadFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.files)
}

// Staged returns the number of staged files.
func (s *FileStore) Staged() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// Loading reports whether a batch is in flight.
func (s *FileStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Errors returns the validation messages recorded since the last successful staging.
func (s *FileStore) Errors() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.errors)
}

func (s *FileStore) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
