package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/borrowx/internal/models"
	"github.com/desertthunder/borrowx/internal/operations"
	"github.com/desertthunder/borrowx/internal/repositories"
	"github.com/desertthunder/borrowx/internal/server"
	"github.com/desertthunder/borrowx/internal/shared"
	"github.com/desertthunder/borrowx/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"
)

// Serve runs the reference API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.config

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	store, err := storage.New(ctx, config.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	detector, err := loadDetector(cmd.String("borrowings"))
	if err != nil {
		return err
	}

	handler := operations.NewHandler(operations.HandlerOpts{
		Store:        store,
		Videos:       repositories.NewVideoRepository(db),
		Operations:   repositories.NewOperationRepository(db),
		Borrowings:   repositories.NewBorrowingRepository(db),
		Detector:     detector,
		AllowedTypes: config.Client.AllowedTypes,
		MaxSize:      config.Server.MaxUploadSize,
		Logger:       r.logger.WithPrefix("operations"),
	})

	if r.logger.GetLevel() > log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	router := server.NewRouter(server.DepsFromConfig(config.Server, handler, r.logger.WithPrefix("http")))

	addr := config.Server.Addr()
	if a := cmd.String("addr"); a != "" {
		addr = a
	}

	r.logger.Info("starting server", "addr", addr, "storage", config.Storage.Type, "database", config.Database.Path)
	return server.New(addr, router, r.logger).Run(ctx)
}

// loadDetector returns a detector reporting the borrowings in path, or the unimplemented default.
// Both borrowing schema versions are accepted.
func loadDetector(path string) (operations.Detector, error) {
	if path == "" {
		return operations.UnimplementedDetector{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read borrowings file: %w", err)
	}

	var records []models.Borrowing
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: failed to parse borrowings file: %w", shared.ErrInvalidArgument, err)
	}

	return operations.StaticDetector{Records: records}, nil
}
