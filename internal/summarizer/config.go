package summarizer

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Env maps environment variable names for summarizer configuration.
type Env struct {
	Agent      string
	Timeout    string
	InputChars string
}

// Config contains summarizer settings.
type Config struct {
	// Agent is a go-agents AgentConfig as JSON. Empty disables summaries.
	Agent string `toml:"agent"`

	// Timeout bounds each completion call.
	// Default: "30s"
	Timeout string `toml:"timeout"`

	// InputChars is how many leading runes of content are summarized.
	// Default: 8000
	InputChars int `toml:"input_chars"`
}

// Enabled reports whether an agent is configured.
func (c *Config) Enabled() bool {
	return c.Agent != ""
}

// AgentJSON returns Agent as raw JSON.
func (c *Config) AgentJSON() json.RawMessage {
	return json.RawMessage(c.Agent)
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
	if overlay.Agent != "" {
		c.Agent = overlay.Agent
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.InputChars != 0 {
		c.InputChars = overlay.InputChars
	}
}

func (c *Config) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.InputChars == 0 {
		c.InputChars = 8000
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Agent != "" {
		if v := os.Getenv(env.Agent); v != "" {
			c.Agent = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.InputChars != "" {
		if v := os.Getenv(env.InputChars); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.InputChars = n
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
	if c.InputChars < 1 {
		return fmt.Errorf("input_chars must be positive")
	}
	if c.Agent != "" && !json.Valid([]byte(c.Agent)) {
		return fmt.Errorf("agent must be valid JSON")
	}
	return nil
}
