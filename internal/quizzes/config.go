package quizzes

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Env maps environment variable names for quiz configuration.
type Env struct {
	Timeout          string
	DefaultQuestions string
	MaxQuestions     string
	InputChars       string
}

// Config contains quiz generation settings.
type Config struct {
	// Timeout bounds each generation call.
	// Default: "60s"
	Timeout string `toml:"timeout"`

	DefaultQuestions int `toml:"default_questions"`
	MaxQuestions     int `toml:"max_questions"`

	// InputChars is how many leading runes of note content are sent for generation.
	InputChars int `toml:"input_chars"`
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
	if overlay.DefaultQuestions != 0 {
		c.DefaultQuestions = overlay.DefaultQuestions
	}
	if overlay.MaxQuestions != 0 {
		c.MaxQuestions = overlay.MaxQuestions
	}
	if overlay.InputChars != 0 {
		c.InputChars = overlay.InputChars
	}
}

func (c *Config) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
	if c.DefaultQuestions == 0 {
		c.DefaultQuestions = 5
	}
	if c.MaxQuestions == 0 {
		c.MaxQuestions = 20
	}
	if c.InputChars == 0 {
		c.InputChars = 12000
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
		{env.DefaultQuestions, &c.DefaultQuestions},
		{env.MaxQuestions, &c.MaxQuestions},
		{env.InputChars, &c.InputChars},
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
	if c.DefaultQuestions < 1 || c.MaxQuestions < 1 {
		return fmt.Errorf("question counts must be positive")
	}
	if c.DefaultQuestions > c.MaxQuestions {
		return fmt.Errorf("default_questions cannot exceed max_questions")
	}
	if c.InputChars < 1 {
		return fmt.Errorf("input_chars must be positive")
	}
	return nil
}
