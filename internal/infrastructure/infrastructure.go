// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, cache) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"

	"github.com/JaimeStill/study-lab/internal/config"
	"github.com/JaimeStill/study-lab/internal/ratelimit"
	"github.com/JaimeStill/study-lab/pkg/database"
	"github.com/JaimeStill/study-lab/pkg/lifecycle"
	"github.com/JaimeStill/study-lab/pkg/logging"
	"github.com/JaimeStill/study-lab/pkg/storage"
	"github.com/redis/go-redis/v9"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, file storage, and the optional Redis connection.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System

	// Redis is nil unless the rate limiter is configured to use it.
	Redis *redis.Client
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := logging.New(&cfg.Logging)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	infra := &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
	}

	if cfg.RateLimit.Store == ratelimit.StoreRedis {
		infra.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RateLimit.Redis.Addr,
			Password: cfg.RateLimit.Redis.Password,
			DB:       cfg.RateLimit.Redis.DB,
		})
	}

	return infra, nil
}

// Start initializes all infrastructure systems and registers them with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if i.Redis != nil {
		i.startRedis()
	}
	return nil
}

func (i *Infrastructure) startRedis() {
	logger := i.Logger.With("system", "redis")
	lc := i.Lifecycle

	lc.OnStartup(func() {
		if err := i.Redis.Ping(lc.Context()).Err(); err != nil {
			logger.Error("redis ping failed", "addr", i.Redis.Options().Addr, "error", err)
			return
		}
		logger.Info("redis connection established", "addr", i.Redis.Options().Addr)
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := i.Redis.Close(); err != nil {
			logger.Error("redis close failed", "error", err)
			return
		}
		logger.Info("redis connection closed")
	})
}
