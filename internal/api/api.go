// Package api assembles the /api module: domain systems, their handlers, and the
// middleware applied to every API request.
package api

import (
	"net/http"

	"github.com/JaimeStill/study-lab/internal/config"
	"github.com/JaimeStill/study-lab/internal/infrastructure"
	"github.com/JaimeStill/study-lab/pkg/middleware"
	"github.com/JaimeStill/study-lab/pkg/module"
)

// NewModule builds the API module mounted at cfg.API.BasePath.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime, err := NewRuntime(cfg, infra)
	if err != nil {
		return nil, err
	}
	domain := NewDomain(cfg, runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, runtime, domain, cfg)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.TrimSlash())
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
