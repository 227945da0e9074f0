package shared

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Client   ClientConfig   `toml:"client"`
	Server   ServerConfig   `toml:"server"`
	Storage  StorageConfig  `toml:"storage"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

// ClientConfig contains upload client settings.
type ClientConfig struct {
	APIURL       string   `toml:"api_url"`
	UploadPath   string   `toml:"upload_path"`
	MaxFiles     int      `toml:"max_files"`
	MaxFileSize  int64    `toml:"max_file_size"`
	AllowedTypes []string `toml:"allowed_types"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	MaxUploadSize  int64    `toml:"max_upload_size"`
	RateLimit      float64  `toml:"rate_limit"`
}

// Addr returns the host:port pair the server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects where uploaded videos are kept.
type StorageConfig struct {
	Type string   `toml:"type"`
	Path string   `toml:"path"`
	S3   S3Config `toml:"s3"`
}

// S3Config contains S3 (or S3-compatible) bucket credentials.
type S3Config struct {
	Bucket             string `toml:"bucket"`
	Region             string `toml:"region"`
	Endpoint           string `toml:"endpoint"`
	AccessKeyID        string `toml:"access_key_id"`
	SecretAccessKey    string `toml:"secret_access_key"`
	MultipartThreshold int64  `toml:"multipart_threshold"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Storage backend names accepted by [StorageConfig].
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadConfigOrDefault loads the file at path when it exists and falls back to [DefaultConfig] otherwise.
func LoadConfigOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects limits and options the client or server cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Client.APIURL == "":
		return fmt.Errorf("%w: client.api_url is empty", ErrInvalidConfig)
	case c.Client.MaxFiles <= 0:
		return fmt.Errorf("%w: client.max_files must be positive", ErrInvalidConfig)
	case c.Client.MaxFileSize <= 0:
		return fmt.Errorf("%w: client.max_file_size must be positive", ErrInvalidConfig)
	case len(c.Client.AllowedTypes) == 0:
		return fmt.Errorf("%w: client.allowed_types is empty", ErrInvalidConfig)
	case c.Server.MaxUploadSize <= 0:
		return fmt.Errorf("%w: server.max_upload_size must be positive", ErrInvalidConfig)
	case c.Server.RateLimit < 0:
		return fmt.Errorf("%w: server.rate_limit must not be negative", ErrInvalidConfig)
	}

	if !slices.Contains([]string{StorageLocal, StorageS3}, c.Storage.Type) {
		return fmt.Errorf("%w: unknown storage type %q", ErrInvalidConfig, c.Storage.Type)
	}
	if c.Storage.Type == StorageS3 && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("%w: storage.s3.bucket is required for s3 storage", ErrInvalidConfig)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

// LogLevel returns the configured [log.Level], defaulting to info.
func (c *Config) LogLevel() log.Level {
	ll, _ := ParseLevel(c.Log.Level)
	return ll
}
