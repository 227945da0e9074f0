package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/desertthunder/borrowx/internal/models"
	"github.com/desertthunder/borrowx/internal/shared"
)

// Multipart field names expected by the upload endpoint.
const (
	FieldFile      = "file"
	FieldFileID    = "fileId"
	FieldNameVideo = "nameVideo"
)

// UploadService sends staged files to the upload endpoint, one multipart request per file.
//
// There is no retry and no timeout at this layer; cancellation comes from the caller's context.
type UploadService struct {
	baseURL    string
	httpClient *http.Client
}

// NewUploadService creates an upload client for the API at baseURL.
func NewUploadService(baseURL string, client *http.Client) *UploadService {
	if baseURL == "" {
		baseURL = shared.ServerURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &UploadService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// Upload posts file to baseURL+path as multipart/form-data with the fields file, fileId and nameVideo.
//
// While the body is sent, progress receives floor(sent*100/total) for the file each time the value
// changes, ending at 100. Sends block until received or ctx is done; progress may be nil.
func (s *UploadService) Upload(ctx context.Context, file models.UploadFile, path string, progress chan<- Progress) (*models.UploadResponse, error) {
	if file.Payload == nil {
		return nil, fmt.Errorf("%w: %s has no payload", shared.ErrInvalidInput, file.Name)
	}

	payload, err := file.Payload.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer payload.Close()

	head, tail, contentType, err := multipartFrame(file)
	if err != nil {
		return nil, err
	}

	total := int64(head.Len()) + file.Size + int64(tail.Len())
	body := &progressReader{
		ctx:      ctx,
		r:        io.MultiReader(head, payload, tail),
		total:    total,
		fileID:   file.ID,
		progress: progress,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: upload %s: %w", shared.ErrAPIRequest, file.Name, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, newStatusError(resp)
	}

	var out models.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: failed to decode upload response: %w", shared.ErrAPIRequest, err)
	}

	return &out, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// fileDisposition builds the form-data Content-Disposition of a file part, escaping quotes and backslashes
// the same way [multipart.Writer.CreateFormFile] does.
func fileDisposition(field, name string) string {
	return fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(field), quoteEscaper.Replace(name))
}

// multipartFrame renders everything around the file contents: the file part header, then the
// fileId and nameVideo fields and the closing boundary.
func multipartFrame(file models.UploadFile) (head, tail *bytes.Buffer, contentType string, err error) {
	head, tail = new(bytes.Buffer), new(bytes.Buffer)

	hw := multipart.NewWriter(head)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fileDisposition(FieldFile, file.Name))
	fileType := file.Type
	if fileType == "" {
		fileType = "application/octet-stream"
	}
	h.Set("Content-Type", fileType)
	if _, err := hw.CreatePart(h); err != nil {
		return nil, nil, "", fmt.Errorf("failed to write multipart header: %w", err)
	}

	// The second writer continues the same body, so it shares the boundary and opens with the CRLF
	// that terminates the file part.
	tail.WriteString("\r\n")
	tw := multipart.NewWriter(tail)
	if err := tw.SetBoundary(hw.Boundary()); err != nil {
		return nil, nil, "", fmt.Errorf("failed to set multipart boundary: %w", err)
	}
	if err := tw.WriteField(FieldFileID, file.ID); err != nil {
		return nil, nil, "", fmt.Errorf("failed to write %s: %w", FieldFileID, err)
	}
	if err := tw.WriteField(FieldNameVideo, file.Name); err != nil {
		return nil, nil, "", fmt.Errorf("failed to write %s: %w", FieldNameVideo, err)
	}
	if err := tw.Close(); err != nil {
		return nil, nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}

	return head, tail, hw.FormDataContentType(), nil
}

// progressReader counts bytes handed to the HTTP client and reports percentage changes.
type progressReader struct {
	ctx      context.Context
	r        io.Reader
	total    int64
	sent     int64
	last     int
	fileID   string
	progress chan<- Progress
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.report()
	}
	return n, err
}

func (p *progressReader) report() {
	if p.progress == nil || p.total <= 0 {
		return
	}

	pct := min(int(p.sent*100/p.total), 100)
	if pct == p.last {
		return
	}
	p.last = pct

	select {
	case p.progress <- Progress{FileID: p.fileID, Percent: pct}:
	case <-p.ctx.Done():
	}
}
