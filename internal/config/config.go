// Package config provides application configuration management with support for
// TOML files, environment variable overrides, and configuration overlays.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/JaimeStill/study-lab/internal/ingest"
	"github.com/JaimeStill/study-lab/internal/moderation"
	"github.com/JaimeStill/study-lab/internal/quizzes"
	"github.com/JaimeStill/study-lab/internal/ratelimit"
	"github.com/JaimeStill/study-lab/internal/summarizer"
	"github.com/JaimeStill/study-lab/internal/tutor"
	"github.com/JaimeStill/study-lab/pkg/database"
	"github.com/JaimeStill/study-lab/pkg/logging"
	"github.com/JaimeStill/study-lab/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

const (
	// BaseConfigFile is the primary configuration file name.
	BaseConfigFile = "config.toml"

	// OverlayConfigPattern is the file name pattern for environment-specific overlays.
	OverlayConfigPattern = "config.%s.toml"

	// EnvServiceEnv specifies the environment name for configuration overlays.
	EnvServiceEnv = "SERVICE_ENV"

	// EnvServiceShutdownTimeout overrides the service shutdown timeout.
	EnvServiceShutdownTimeout = "SERVICE_SHUTDOWN_TIMEOUT"

	// EnvServiceVersion overrides the reported service version.
	EnvServiceVersion = "SERVICE_VERSION"
)

// Config represents the root service configuration.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Database        database.Config   `toml:"database"`
	Logging         logging.Config    `toml:"logging"`
	Storage         storage.Config    `toml:"storage"`
	API             APIConfig         `toml:"api"`
	Ingest          ingest.Config     `toml:"ingest"`
	RateLimit       ratelimit.Config  `toml:"ratelimit"`
	Moderation      moderation.Config `toml:"moderation"`
	Summarizer      summarizer.Config `toml:"summarizer"`
	Quizzes         quizzes.Config    `toml:"quizzes"`
	Tutor           tutor.Config      `toml:"tutor"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// ShutdownTimeoutDuration parses and returns the shutdown timeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads and parses the base configuration file and applies any environment-specific overlay.
// A missing base file yields an empty configuration that Finalize fills with defaults.
func Load() (*Config, error) {
	cfg, err := load(BaseConfigFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = &Config{}
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}
	return cfg, nil
}

// Parse decodes TOML data into a Config without applying defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Logging.Finalize(loggingEnv); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Ingest.Finalize(ingestEnv); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if err := c.RateLimit.Finalize(rateLimitEnv); err != nil {
		return fmt.Errorf("ratelimit: %w", err)
	}
	if err := c.Moderation.Finalize(moderationEnv); err != nil {
		return fmt.Errorf("moderation: %w", err)
	}
	if err := c.Summarizer.Finalize(summarizerEnv); err != nil {
		return fmt.Errorf("summarizer: %w", err)
	}
	if err := c.Quizzes.Finalize(quizzesEnv); err != nil {
		return fmt.Errorf("quizzes: %w", err)
	}
	if err := c.Tutor.Finalize(tutorEnv); err != nil {
		return fmt.Errorf("tutor: %w", err)
	}
	if c.Storage.MaxUploadSizeBytes() < c.Ingest.MaxFileSizeBytes() {
		return fmt.Errorf("storage: max_upload_size %s is smaller than ingest.max_file_size %s",
			c.Storage.MaxUploadSize, c.Ingest.MaxFileSize)
	}
	return nil
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Logging.Merge(&overlay.Logging)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Ingest.Merge(&overlay.Ingest)
	c.RateLimit.Merge(&overlay.RateLimit)
	c.Moderation.Merge(&overlay.Moderation)
	c.Summarizer.Merge(&overlay.Summarizer)
	c.Quizzes.Merge(&overlay.Quizzes)
	c.Tutor.Merge(&overlay.Tutor)
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvServiceShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvServiceVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func overlayPath() string {
	if env := os.Getenv(EnvServiceEnv); env != "" {
		overlayPath := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(overlayPath); err == nil {
			return overlayPath
		}
	}
	return ""
}
