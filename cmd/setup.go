package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/borrowx/internal/shared"
	"github.com/desertthunder/borrowx/internal/storage"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file if missing, then initializes the database and storage it names.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	config := r.config

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				return fmt.Errorf("failed to load created config: %w", err)
			}
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)
	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := shared.AppliedMigrations(db)
	if err != nil {
		return err
	}

	if config.Storage.Type == shared.StorageLocal {
		if _, err := storage.NewLocalStore(config.Storage.Path); err != nil {
			return err
		}
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("✓ Config: %s\n", configPath)
	r.writePlain("✓ Database: %s (%d migrations applied)\n", config.Database.Path, len(applied))
	if config.Storage.Type == shared.StorageLocal {
		r.writePlain("✓ Storage: %s\n", config.Storage.Path)
	} else {
		r.writePlain("✓ Storage: s3://%s\n", config.Storage.S3.Bucket)
	}
	return nil
}
