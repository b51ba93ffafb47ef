package tutor

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Env maps environment variable names for tutor configuration.
type Env struct {
	Timeout      string
	ContextChars string
	MaxMessages  string
}

// Config contains tutor chat settings.
type Config struct {
	// Timeout bounds each chat call.
	// Default: "60s"
	Timeout string `toml:"timeout"`

	// ContextChars is how many leading runes of note content are given to the tutor.
	ContextChars int `toml:"context_chars"`

	MaxMessages int `toml:"max_messages"`
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
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.ContextChars != 0 {
		c.ContextChars = overlay.ContextChars
	}
	if overlay.MaxMessages != 0 {
		c.MaxMessages = overlay.MaxMessages
	}
}

func (c *Config) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
	if c.ContextChars == 0 {
		c.ContextChars = 3000
	}
	if c.MaxMessages == 0 {
		c.MaxMessages = 50
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	for _, item := range []struct {
		key string
		dst *int
	}{
		{env.ContextChars, &c.ContextChars},
		{env.MaxMessages, &c.MaxMessages},
	} {
		if item.key == "" {
			continue
		}
		if v := os.Getenv(item.key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*item.dst = n
			}
		}
	}
}

func (c *Config) validate() error {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.ContextChars < 1 {
		return fmt.Errorf("context_chars must be positive")
	}
	if c.MaxMessages < 1 {
		return fmt.Errorf("max_messages must be positive")
	}
	return nil
}
