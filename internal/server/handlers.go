package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/desertthunder/borrowx/internal/formatter"
	"github.com/desertthunder/borrowx/internal/models"
	"github.com/desertthunder/borrowx/internal/operations"
	"github.com/desertthunder/borrowx/internal/services"
	"github.com/desertthunder/borrowx/internal/shared"
)

const (
	operationIDHeader = "X-Operation-ID"
	videoIDHeader     = "X-Video-ID"

	// multipartOverhead allows for the boundaries and text fields around the file part.
	multipartOverhead = 1 << 20

	uploadedMessage = "video uploaded"
)

type handlers struct {
	svc    Service
	logger *log.Logger
}

func (h *handlers) heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h *handlers) upload(c *gin.Context) {
	requestID := c.GetString(requestIDKey)

	fh, err := c.FormFile(services.FieldFile)
	if err != nil {
		if isBodyTooLarge(err) {
			abortWithError(c, http.StatusRequestEntityTooLarge, "Request body size exceeds limit")
			return
		}
		h.logger.Warn("bad upload form", "request_id", requestID, "error", err)
		abortWithError(c, http.StatusBadRequest, "No file provided")
		return
	}

	name := c.PostForm(services.FieldNameVideo)
	if name == "" {
		name = fh.Filename
	}

	f, err := fh.Open()
	if err != nil {
		h.logger.Error("failed to open multipart file", "request_id", requestID, "error", err)
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer f.Close()

	result, err := h.svc.Handle(c.Request.Context(), operations.LoadVideoCommand{
		FileID:      c.PostForm(services.FieldFileID),
		Name:        name,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if result != nil && result.Operation != nil {
		c.Header(operationIDHeader, result.Operation.ID)
	}
	if err != nil {
		switch {
		case errors.Is(err, operations.ErrUnsupportedType):
			abortWithError(c, http.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, operations.ErrTooLarge):
			abortWithError(c, http.StatusRequestEntityTooLarge, err.Error())
		default:
			h.logger.Error("upload failed", "request_id", requestID, "error", err)
			abortWithError(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.Header(videoIDHeader, result.Video.ID())
	c.JSON(http.StatusOK, models.UploadResponse{
		Message:   uploadedMessage,
		Status:    http.StatusOK,
		Borrowing: result.Borrowings,
	})
}

func (h *handlers) operation(c *gin.Context) {
	op, err := h.svc.Operation(c.Param("id"))
	if err != nil {
		h.lookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, op)
}

func (h *handlers) borrowings(c *gin.Context) {
	records, err := h.svc.Borrowings(c.Param("id"))
	if err != nil {
		h.lookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"borrowing": records})
}

func (h *handlers) submission(c *gin.Context) {
	id := c.Param("id")

	records, err := h.svc.Borrowings(id)
	if err != nil {
		h.lookupError(c, err)
		return
	}

	data, err := formatter.ExportToCSV(records)
	if err != nil {
		h.logger.Error("failed to export borrowings", "video_id", id, "error", err)
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="submission-%s.csv"`, id))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *handlers) lookupError(c *gin.Context, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		abortWithError(c, http.StatusNotFound, "Not found")
		return
	}
	h.logger.Error("lookup failed", "request_id", c.GetString(requestIDKey), "error", err)
	abortWithError(c, http.StatusInternalServerError, "Internal server error")
}
