package ratelimit

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store kinds accepted by Config.Store.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Env maps environment variable names for rate limit configuration.
type Env struct {
	Window         string
	MaxRequests    string
	SweepThreshold string
	Store          string
	Redis          *RedisEnv
}

// RedisEnv maps environment variable names for the Redis connection.
type RedisEnv struct {
	Addr      string
	Password  string
	DB        string
	KeyPrefix string
}

// Config contains rate limit settings.
type Config struct {
	// Window is the rolling window as a duration string.
	// Default: "60s"
	Window string `toml:"window"`

	// MaxRequests is the number of attempts allowed per window.
	// Default: 20
	MaxRequests int `toml:"max_requests"`

	// SweepThreshold is the tracked-key count that triggers a stale-key sweep in the memory store.
	SweepThreshold int `toml:"sweep_threshold"`

	// Store selects "memory" or "redis".
	Store string `toml:"store"`

	Redis RedisConfig `toml:"redis"`
}

// RedisConfig holds the connection used when Store is "redis".
type RedisConfig struct {
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	KeyPrefix string `toml:"key_prefix"`
}

// WindowDuration parses Window. Valid after Finalize.
func (c *Config) WindowDuration() time.Duration {
	d, _ := time.ParseDuration(c.Window)
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
	if overlay.Window != "" {
		c.Window = overlay.Window
	}
	if overlay.MaxRequests != 0 {
		c.MaxRequests = overlay.MaxRequests
	}
	if overlay.SweepThreshold != 0 {
		c.SweepThreshold = overlay.SweepThreshold
	}
	if overlay.Store != "" {
		c.Store = overlay.Store
	}
	if overlay.Redis.Addr != "" {
		c.Redis.Addr = overlay.Redis.Addr
	}
	if overlay.Redis.Password != "" {
		c.Redis.Password = overlay.Redis.Password
	}
	if overlay.Redis.DB != 0 {
		c.Redis.DB = overlay.Redis.DB
	}
	if overlay.Redis.KeyPrefix != "" {
		c.Redis.KeyPrefix = overlay.Redis.KeyPrefix
	}
}

func (c *Config) loadDefaults() {
	if c.Window == "" {
		c.Window = "60s"
	}
	if c.MaxRequests == 0 {
		c.MaxRequests = 20
	}
	if c.SweepThreshold == 0 {
		c.SweepThreshold = DefaultSweepThreshold
	}
	if c.Store == "" {
		c.Store = StoreMemory
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "ratelimit:"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Window != "" {
		if v := os.Getenv(env.Window); v != "" {
			c.Window = v
		}
	}
	if env.MaxRequests != "" {
		if v := os.Getenv(env.MaxRequests); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxRequests = n
			}
		}
	}
	if env.SweepThreshold != "" {
		if v := os.Getenv(env.SweepThreshold); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.SweepThreshold = n
			}
		}
	}
	if env.Store != "" {
		if v := os.Getenv(env.Store); v != "" {
			c.Store = v
		}
	}

	if env.Redis == nil {
		return
	}
	if env.Redis.Addr != "" {
		if v := os.Getenv(env.Redis.Addr); v != "" {
			c.Redis.Addr = v
		}
	}
	if env.Redis.Password != "" {
		if v := os.Getenv(env.Redis.Password); v != "" {
			c.Redis.Password = v
		}
	}
	if env.Redis.DB != "" {
		if v := os.Getenv(env.Redis.DB); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Redis.DB = n
			}
		}
	}
	if env.Redis.KeyPrefix != "" {
		if v := os.Getenv(env.Redis.KeyPrefix); v != "" {
			c.Redis.KeyPrefix = v
		}
	}
}

func (c *Config) validate() error {
	d, err := time.ParseDuration(c.Window)
	if err != nil {
		return fmt.Errorf("invalid window: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("window must be positive")
	}
	if c.MaxRequests < 1 {
		return fmt.Errorf("max_requests must be positive")
	}
	switch c.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr required for redis store")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	return nil
}
