// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/borrowx/internal/models"
	"github.com/desertthunder/borrowx/internal/services"
)

// FakeUploader is a test double for the upload transport.
//
// Behavior is keyed by file name: Errors decides rejection, Responses the success body, Delays how long
// the call waits first. Every call emits Steps as progress before settling.
type FakeUploader struct {
	Responses map[string]*models.UploadResponse
	Errors    map[string]error
	Delays    map[string]time.Duration
	Steps     []int

	mu    sync.Mutex
	calls []models.UploadFile
	paths []string
}

func (f *FakeUploader) Upload(ctx context.Context, file models.UploadFile, path string, progress chan<- services.Progress) (*models.UploadResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, file)
	f.paths = append(f.paths, path)
	f.mu.Unlock()

	if d := f.Delays[file.Name]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	for _, pct := range f.Steps {
		select {
		case progress <- services.Progress{FileID: file.ID, Percent: pct}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := f.Errors[file.Name]; err != nil {
		return nil, err
	}
	if resp := f.Responses[file.Name]; resp != nil {
		return resp, nil
	}
	return &models.UploadResponse{Message: "ok", Status: http.StatusOK}, nil
}

// Calls returns the files passed to Upload, in call order.
func (f *FakeUploader) Calls() []models.UploadFile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.UploadFile(nil), f.calls...)
}

// Paths returns the endpoint paths passed to Upload, in call order.
func (f *FakeUploader) Paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

// RecordingNotifier keeps every notification it receives.
type RecordingNotifier struct {
	mu        sync.Mutex
	errors    []string
	successes []string
}

func (n *RecordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func (n *RecordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *RecordingNotifier) Errors() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.errors...)
}

func (n *RecordingNotifier) Successes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.successes...)
}

// Candidate builds an in-memory candidate of the given type and size.
func Candidate(name, mime string, size int) models.Candidate {
	return models.Candidate{
		Name:    name,
		Size:    int64(size),
		Type:    mime,
		Payload: models.BytesPayload(make([]byte, size)),
	}
}

// MP4Header is the start of an ISO base media file, enough for content sniffing to report video/mp4.
var MP4Header = []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2', 0x00, 0x00, 0x00, 0x00, 'm', 'p', '4', '2', 'i', 's', 'o', 'm'}

// MP4Bytes returns a buffer of n bytes that sniffs as video/mp4.
func MP4Bytes(n int) []byte {
	b := make([]byte, max(n, len(MP4Header)))
	copy(b, MP4Header)
	return b
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// MustWriteFile writes content to dir/name and returns the path.
func MustWriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := dir + string(os.PathSeparator) + name
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}
