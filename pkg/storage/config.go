package storage

import (
	"fmt"
	"os"

	"github.com/docker/go-units"
)

// Env maps environment variable names for storage configuration.
type Env struct {
	BasePath      string
	MaxUploadSize string
}

// Config contains source blob storage configuration.
type Config struct {
	// BasePath is the root directory for source blobs.
	// Default: ".data/sources"
	BasePath string `toml:"base_path"`

	// MaxUploadSize caps a whole multipart upload across all of its files.
	// Parsed as binary units, so "50MB" is 50 MiB.
	// Default: "50MB"
	MaxUploadSize    string `toml:"max_upload_size"`
	maxUploadSizeVal int64
}

// MaxUploadSizeBytes returns the parsed MaxUploadSize. Valid after Finalize.
func (c *Config) MaxUploadSizeBytes() int64 {
	return c.maxUploadSizeVal
}

// Finalize applies defaults, loads environment overrides, and validates the storage configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&c.BasePath, overlay.BasePath},
		{&c.MaxUploadSize, overlay.MaxUploadSize},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}
}

func (c *Config) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = ".data/sources"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
}

func (c *Config) loadEnv(env *Env) {
	for _, item := range []struct {
		key string
		dst *string
	}{
		{env.BasePath, &c.BasePath},
		{env.MaxUploadSize, &c.MaxUploadSize},
	} {
		if item.key == "" {
			continue
		}
		if v := os.Getenv(item.key); v != "" {
			*item.dst = v
		}
	}
}

func (c *Config) validate() error {
	size, err := units.RAMInBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	c.maxUploadSizeVal = size
	return nil
}
