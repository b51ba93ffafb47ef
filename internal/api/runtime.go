package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/study-lab/internal/config"
	"github.com/JaimeStill/study-lab/internal/infrastructure"
	"github.com/JaimeStill/study-lab/internal/moderation"
	"github.com/JaimeStill/study-lab/internal/ratelimit"
	"github.com/JaimeStill/study-lab/internal/summarizer"
	"github.com/JaimeStill/study-lab/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration and the
// external collaborators shared by domain systems.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config

	// Completer and Conversation are nil when no agent is configured.
	Completer    summarizer.Completer
	Conversation summarizer.Conversation

	// Classifier is nil when no moderation API key is configured.
	Classifier moderation.Classifier

	RateStore ratelimit.Store
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) (*Runtime, error) {
	logger := infra.Logger.With("module", "api")

	rt := &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Database:  infra.Database,
			Storage:   infra.Storage,
			Redis:     infra.Redis,
		},
		Pagination: cfg.API.Pagination,
	}

	switch cfg.RateLimit.Store {
	case ratelimit.StoreRedis:
		if infra.Redis == nil {
			return nil, fmt.Errorf("ratelimit store %q requires a redis connection", cfg.RateLimit.Store)
		}
		rt.RateStore = ratelimit.NewRedisStore(infra.Redis, cfg.RateLimit.Redis.KeyPrefix)
	default:
		rt.RateStore = ratelimit.NewMemoryStore(cfg.RateLimit.SweepThreshold)
	}

	if c := moderation.NewHTTPClassifier(&cfg.Moderation, &http.Client{}); c != nil {
		rt.Classifier = c
	} else {
		logger.Warn("moderation api key not set, classifier disabled")
	}

	if cfg.Summarizer.Enabled() {
		completer, err := summarizer.NewAgentCompleter(cfg.Summarizer.AgentJSON())
		if err != nil {
			return nil, fmt.Errorf("summarizer agent: %w", err)
		}
		rt.Completer = completer
		rt.Conversation = completer
	} else {
		logger.Info("summarizer agent not configured, summaries, quizzes and tutor chat disabled")
	}

	return rt, nil
}
