package ingest

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/JaimeStill/study-lab/internal/validator"
	"github.com/docker/go-units"
)

// Env maps environment variable names for ingestion configuration.
type Env struct {
	MaxFileSize        string
	AllowedTypes       string
	ExtractConcurrency string
}

// Config contains per-file limits and extraction settings for the pipeline.
type Config struct {
	// MaxFileSize is the per-file cap in binary units, e.g. "10MB" is 10 MiB.
	MaxFileSize    string `toml:"max_file_size"`
	maxFileSizeVal int64

	// AllowedTypes is the MIME allow-list. Empty uses the validator defaults.
	AllowedTypes []string `toml:"allowed_types"`

	// ExtractConcurrency bounds how many files decode at once.
	// Default: 4
	ExtractConcurrency int `toml:"extract_concurrency"`
}

// MaxFileSizeBytes returns the parsed MaxFileSize. Valid after Finalize.
func (c *Config) MaxFileSizeBytes() int64 {
	return c.maxFileSizeVal
}

// Rules converts the configuration into validator rules.
func (c *Config) Rules() validator.Rules {
	rules := validator.DefaultRules()
	if c.maxFileSizeVal > 0 {
		rules.MaxSize = c.maxFileSizeVal
	}
	if len(c.AllowedTypes) > 0 {
		rules.AllowedTypes = c.AllowedTypes
	}
	return rules
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies non-zero values from overlay onto the receiver.
func (c *Config) Merge(overlay *Config) {
	if overlay.MaxFileSize != "" {
		c.MaxFileSize = overlay.MaxFileSize
	}
	if len(overlay.AllowedTypes) > 0 {
		c.AllowedTypes = overlay.AllowedTypes
	}
	if overlay.ExtractConcurrency != 0 {
		c.ExtractConcurrency = overlay.ExtractConcurrency
	}
}

func (c *Config) loadDefaults() {
	if c.MaxFileSize == "" {
		c.MaxFileSize = "10MB"
	}
	if c.ExtractConcurrency == 0 {
		c.ExtractConcurrency = 4
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.MaxFileSize != "" {
		if v := os.Getenv(env.MaxFileSize); v != "" {
			c.MaxFileSize = v
		}
	}
	if env.AllowedTypes != "" {
		if v := os.Getenv(env.AllowedTypes); v != "" {
			types := strings.Split(v, ",")
			for i, t := range types {
				types[i] = strings.TrimSpace(t)
			}
			c.AllowedTypes = types
		}
	}
	if env.ExtractConcurrency != "" {
		if v := os.Getenv(env.ExtractConcurrency); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.ExtractConcurrency = n
			}
		}
	}
}

func (c *Config) validate() error {
	size, err := units.RAMInBytes(c.MaxFileSize)
	if err != nil {
		return fmt.Errorf("invalid max_file_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_file_size must be positive")
	}
	c.maxFileSizeVal = size

	if c.ExtractConcurrency < 1 {
		return fmt.Errorf("extract_concurrency must be positive")
	}
	return nil
}
