package moderation

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Env maps environment variable names for moderation configuration.
type Env struct {
	Endpoint      string
	APIKey        string
	Model         string
	Timeout       string
	MinLength     string
	MaxLength     string
	ClassifyChars string
}

// Config contains moderation settings.
type Config struct {
	// Endpoint is the full moderations URL.
	// Default: "https://api.openai.com/v1/moderations"
	Endpoint string `toml:"endpoint"`

	// APIKey enables the external classifier. Empty disables it.
	APIKey string `toml:"api_key"`

	Model   string `toml:"model"`
	Timeout string `toml:"timeout"`

	// MinLength and MaxLength bound content length in runes.
	MinLength int `toml:"min_length"`
	MaxLength int `toml:"max_length"`

	// ClassifyChars is how many leading runes are sent to the classifier.
	ClassifyChars int `toml:"classify_chars"`
}

// TimeoutDuration parses Timeout. Valid after Finalize.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
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
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MinLength != 0 {
		c.MinLength = overlay.MinLength
	}
	if overlay.MaxLength != 0 {
		c.MaxLength = overlay.MaxLength
	}
	if overlay.ClassifyChars != 0 {
		c.ClassifyChars = overlay.ClassifyChars
	}
}

func (c *Config) loadDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "https://api.openai.com/v1/moderations"
	}
	if c.Model == "" {
		c.Model = "omni-moderation-latest"
	}
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
	if c.MinLength == 0 {
		c.MinLength = 10
	}
	if c.MaxLength == 0 {
		c.MaxLength = 100000
	}
	if c.ClassifyChars == 0 {
		c.ClassifyChars = 32000
	}
}

func (c *Config) loadEnv(env *Env) {
	setString(&c.Endpoint, env.Endpoint)
	setString(&c.APIKey, env.APIKey)
	setString(&c.Model, env.Model)
	setString(&c.Timeout, env.Timeout)
	setInt(&c.MinLength, env.MinLength)
	setInt(&c.MaxLength, env.MaxLength)
	setInt(&c.ClassifyChars, env.ClassifyChars)
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.MinLength < 0 {
		return fmt.Errorf("min_length cannot be negative")
	}
	if c.MaxLength <= c.MinLength {
		return fmt.Errorf("max_length must exceed min_length")
	}
	if c.ClassifyChars < 1 {
		return fmt.Errorf("classify_chars must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if key == "" {
		return
	}
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if key == "" {
		return
	}
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
