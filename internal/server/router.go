package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/desertthunder/borrowx/internal/models"
	"github.com/desertthunder/borrowx/internal/operations"
	"github.com/desertthunder/borrowx/internal/shared"
)

// Service is the upload processing the routes delegate to. [*operations.Handler] implements it.
type Service interface {
	Handle(ctx context.Context, cmd operations.LoadVideoCommand) (*operations.Result, error)
	Operation(id string) (*models.OperationInfo, error)
	Borrowings(videoID string) ([]models.Borrowing, error)
}

// Deps wires the router.
type Deps struct {
	Service        Service
	Logger         *log.Logger
	AllowedOrigins []string
	MaxUploadSize  int64
	RateLimit      float64
}

// DepsFromConfig fills the HTTP settings of [Deps] from cfg.
func DepsFromConfig(cfg shared.ServerConfig, svc Service, logger *log.Logger) Deps {
	return Deps{
		Service:        svc,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxUploadSize:  cfg.MaxUploadSize,
		RateLimit:      cfg.RateLimit,
	}
}

// NewRouter builds the API engine.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = log.New(io.Discard)
	}
	if d.MaxUploadSize <= 0 {
		d.MaxUploadSize = shared.MaxFileSize
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	if len(d.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  d.AllowedOrigins,
			AllowMethods:  []string{"GET", "HEAD", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
			ExposeHeaders: []string{"Content-Length", requestIDHeader, operationIDHeader, videoIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}

	router.Use(
		gin.Recovery(),
		RequestID(),
		RequestLogger(d.Logger),
	)

	h := &handlers{svc: d.Service, logger: d.Logger}

	api := router.Group("/api")
	if d.RateLimit > 0 {
		api.Use(NewRateLimiter(d.RateLimit, 0).Middleware())
	}
	{
		// HEAD /api/heartbeat			-> Used to check if the server is alive
		api.HEAD("/heartbeat", h.heartbeat)

		// POST /api/files			-> Uploads a video and returns its borrowings
		api.POST("/files", BodySizeLimiter(d.MaxUploadSize+multipartOverhead), h.upload)

		// GET /api/operations/:id		-> Returns the state of an operation
		api.GET("/operations/:id", h.operation)

		// GET /api/videos/:id/borrowings	-> Returns the borrowing table of a video
		api.GET("/videos/:id/borrowings", h.borrowings)

		// GET /api/videos/:id/submission	-> Returns the borrowing table as a CSV attachment
		api.GET("/videos/:id/submission", h.submission)
	}

	router.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, "Not found")
	})

	return router
}
