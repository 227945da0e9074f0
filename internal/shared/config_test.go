package shared

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/charmbracelet/log"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Client.APIURL != ServerURL {
			t.Errorf("expected api url %s, got %s", ServerURL, config.Client.APIURL)
		}

		if config.Client.UploadPath != UploadPath {
			t.Errorf("expected upload path %s, got %s", UploadPath, config.Client.UploadPath)
		}

		if config.Client.MaxFiles != MaxFilesToUpload {
			t.Errorf("expected max files %d, got %d", MaxFilesToUpload, config.Client.MaxFiles)
		}

		if config.Client.MaxFileSize != MaxFileSize {
			t.Errorf("expected max file size %d, got %d", MaxFileSize, config.Client.MaxFileSize)
		}

		if !slices.Equal(config.Client.AllowedTypes, AllowedFileTypes) {
			t.Errorf("expected allowed types %v, got %v", AllowedFileTypes, config.Client.AllowedTypes)
		}

		if config.Server.Port != 8001 {
			t.Errorf("expected server port 8001, got %d", config.Server.Port)
		}

		if config.Storage.Type != StorageLocal {
			t.Errorf("expected local storage, got %s", config.Storage.Type)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig Overrides Defaults", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[client]
api_url = "http://example.com/api"
max_files = 2
allowed_types = ["video/mp4"]

[storage]
type = "s3"

[storage.s3]
bucket = "videos"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Client.APIURL != "http://example.com/api" {
			t.Errorf("expected overridden api url, got %s", config.Client.APIURL)
		}
		if config.Client.MaxFiles != 2 {
			t.Errorf("expected max files 2, got %d", config.Client.MaxFiles)
		}
		if !slices.Equal(config.Client.AllowedTypes, []string{"video/mp4"}) {
			t.Errorf("expected allowed types to be replaced, got %v", config.Client.AllowedTypes)
		}
		if config.Client.MaxFileSize != MaxFileSize {
			t.Errorf("missing keys should keep defaults, got max file size %d", config.Client.MaxFileSize)
		}
		if config.Storage.S3.Bucket != "videos" {
			t.Errorf("expected bucket videos, got %s", config.Storage.S3.Bucket)
		}
	})

	t.Run("LoadConfigOrDefault Missing File", func(t *testing.T) {
		config, err := LoadConfigOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.Client.MaxFiles != MaxFilesToUpload {
			t.Errorf("expected default config, got max files %d", config.Client.MaxFiles)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tt := []struct {
			name   string
			mutate func(c *Config)
		}{
			{name: "empty api url", mutate: func(c *Config) { c.Client.APIURL = "" }},
			{name: "zero max files", mutate: func(c *Config) { c.Client.MaxFiles = 0 }},
			{name: "negative max file size", mutate: func(c *Config) { c.Client.MaxFileSize = -1 }},
			{name: "empty allow list", mutate: func(c *Config) { c.Client.AllowedTypes = nil }},
			{name: "zero upload size", mutate: func(c *Config) { c.Server.MaxUploadSize = 0 }},
			{name: "unknown storage", mutate: func(c *Config) { c.Storage.Type = "ftp" }},
			{name: "s3 without bucket", mutate: func(c *Config) { c.Storage.Type = StorageS3 }},
			{name: "unknown log level", mutate: func(c *Config) { c.Log.Level = "loud" }},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				config := DefaultConfig()
				tc.mutate(config)

				if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("LogLevel", func(t *testing.T) {
		config := DefaultConfig()
		config.Log.Level = "DEBUG"
		if config.LogLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", config.LogLevel())
		}
	})

	t.Run("Addr", func(t *testing.T) {
		config := DefaultConfig()
		if got := config.Server.Addr(); got != "localhost:8001" {
			t.Errorf("expected localhost:8001, got %s", got)
		}
	})
}
