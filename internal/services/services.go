// package services implements HTTP clients for the upload API
package services

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/borrowx/internal/shared"
)

// maxErrorBody bounds how much of a failed response is kept for error messages.
const maxErrorBody = 4 << 10

// Progress reports the upload percentage of one staged file.
type Progress struct {
	FileID  string
	Percent int
}

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%v: status %d", shared.ErrAPIRequest, e.StatusCode)
	}
	return fmt.Sprintf("%v: status %d: %s", shared.ErrAPIRequest, e.StatusCode, e.Body)
}

// Unwrap allows errors.Is(err, shared.ErrAPIRequest).
func (e *StatusError) Unwrap() error {
	return shared.ErrAPIRequest
}

func newStatusError(resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
