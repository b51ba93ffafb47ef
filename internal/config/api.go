package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/study-lab/pkg/middleware"
	"github.com/JaimeStill/study-lab/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "SERVICE_API_CORS_ENABLED",
	Origins:          "SERVICE_API_CORS_ORIGINS",
	AllowedMethods:   "SERVICE_API_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "SERVICE_API_CORS_ALLOWED_HEADERS",
	AllowCredentials: "SERVICE_API_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "SERVICE_API_CORS_MAX_AGE",
}

var paginationEnv = &pagination.Env{
	DefaultPageSize: "SERVICE_API_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "SERVICE_API_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig contains settings for the /api module.
type APIConfig struct {
	BasePath   string                `toml:"base_path"`
	CORS       middleware.CORSConfig `toml:"cors"`
	Pagination pagination.Config     `toml:"pagination"`
}

func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("SERVICE_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
}
