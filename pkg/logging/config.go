package logging

import (
	"os"
	"slices"
	"strings"
)

// DefaultRedact lists attribute keys whose values never reach the log:
// credentials and the text of student notes.
var DefaultRedact = []string{"password", "api_key", "token", "authorization", "dsn", "content"}

// Env maps environment variable names for logging configuration.
type Env struct {
	Level  string
	Format string

	// Redact names a comma-separated key list that replaces the configured one.
	Redact string
}

// Config holds logging configuration settings.
type Config struct {
	Level  Level  `toml:"level"`
	Format Format `toml:"format"`

	// Redact lists attribute keys, matched case-insensitively, whose values are
	// replaced with "[redacted]". Default: DefaultRedact.
	Redact []string `toml:"redact"`
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
// Level and format are case-insensitive.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	c.Level = Level(strings.ToLower(string(c.Level)))
	c.Format = Format(strings.ToLower(string(c.Format)))
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
	if overlay.Redact != nil {
		c.Redact = slices.Clone(overlay.Redact)
	}
}

func (c *Config) loadDefaults() {
	if c.Level == "" {
		c.Level = LevelInfo
	}
	if c.Format == "" {
		c.Format = FormatText
	}
	if c.Redact == nil {
		c.Redact = slices.Clone(DefaultRedact)
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := getenv(env.Level); v != "" {
		c.Level = Level(v)
	}
	if v := getenv(env.Format); v != "" {
		c.Format = Format(v)
	}
	if v := getenv(env.Redact); v != "" {
		c.Redact = c.Redact[:0]
		for key := range strings.SplitSeq(v, ",") {
			if key = strings.TrimSpace(key); key != "" {
				c.Redact = append(c.Redact, key)
			}
		}
	}
}

func (c *Config) validate() error {
	if err := c.Level.Validate(); err != nil {
		return err
	}
	return c.Format.Validate()
}

func getenv(key string) string {
	if key == "" {
		return ""
	}
	return os.Getenv(key)
}
