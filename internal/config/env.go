package config

import (
	"github.com/JaimeStill/study-lab/internal/ingest"
	"github.com/JaimeStill/study-lab/internal/moderation"
	"github.com/JaimeStill/study-lab/internal/quizzes"
	"github.com/JaimeStill/study-lab/internal/ratelimit"
	"github.com/JaimeStill/study-lab/internal/summarizer"
	"github.com/JaimeStill/study-lab/internal/tutor"
	"github.com/JaimeStill/study-lab/pkg/database"
	"github.com/JaimeStill/study-lab/pkg/logging"
	"github.com/JaimeStill/study-lab/pkg/storage"
)

var databaseEnv = &database.Env{
	DSN:             "SERVICE_DATABASE_DSN",
	Host:            "SERVICE_DATABASE_HOST",
	Port:            "SERVICE_DATABASE_PORT",
	Name:            "SERVICE_DATABASE_NAME",
	User:            "SERVICE_DATABASE_USER",
	Password:        "SERVICE_DATABASE_PASSWORD",
	SSLMode:         "SERVICE_DATABASE_SSLMODE",
	MaxOpenConns:    "SERVICE_DATABASE_MAX_OPEN_CONNS",
	MaxIdleConns:    "SERVICE_DATABASE_MAX_IDLE_CONNS",
	ConnMaxLifetime: "SERVICE_DATABASE_CONN_MAX_LIFETIME",
	ConnTimeout:     "SERVICE_DATABASE_CONN_TIMEOUT",
}

var loggingEnv = &logging.Env{
	Level:  "SERVICE_LOGGING_LEVEL",
	Format: "SERVICE_LOGGING_FORMAT",
	Redact: "SERVICE_LOGGING_REDACT",
}

var storageEnv = &storage.Env{
	BasePath:      "SERVICE_STORAGE_BASE_PATH",
	MaxUploadSize: "SERVICE_STORAGE_MAX_UPLOAD_SIZE",
}

var ingestEnv = &ingest.Env{
	MaxFileSize:        "SERVICE_INGEST_MAX_FILE_SIZE",
	AllowedTypes:       "SERVICE_INGEST_ALLOWED_TYPES",
	ExtractConcurrency: "SERVICE_INGEST_EXTRACT_CONCURRENCY",
}

var rateLimitEnv = &ratelimit.Env{
	Window:         "SERVICE_RATELIMIT_WINDOW",
	MaxRequests:    "SERVICE_RATELIMIT_MAX_REQUESTS",
	SweepThreshold: "SERVICE_RATELIMIT_SWEEP_THRESHOLD",
	Store:          "SERVICE_RATELIMIT_STORE",
	Redis: &ratelimit.RedisEnv{
		Addr:      "SERVICE_REDIS_ADDR",
		Password:  "SERVICE_REDIS_PASSWORD",
		DB:        "SERVICE_REDIS_DB",
		KeyPrefix: "SERVICE_REDIS_KEY_PREFIX",
	},
}

var moderationEnv = &moderation.Env{
	Endpoint:      "SERVICE_MODERATION_ENDPOINT",
	APIKey:        "SERVICE_MODERATION_API_KEY",
	Model:         "SERVICE_MODERATION_MODEL",
	Timeout:       "SERVICE_MODERATION_TIMEOUT",
	MinLength:     "SERVICE_MODERATION_MIN_LENGTH",
	MaxLength:     "SERVICE_MODERATION_MAX_LENGTH",
	ClassifyChars: "SERVICE_MODERATION_CLASSIFY_CHARS",
}

var summarizerEnv = &summarizer.Env{
	Agent:      "SERVICE_SUMMARIZER_AGENT",
	Timeout:    "SERVICE_SUMMARIZER_TIMEOUT",
	InputChars: "SERVICE_SUMMARIZER_INPUT_CHARS",
}

var quizzesEnv = &quizzes.Env{
	Timeout:          "SERVICE_QUIZZES_TIMEOUT",
	DefaultQuestions: "SERVICE_QUIZZES_DEFAULT_QUESTIONS",
	MaxQuestions:     "SERVICE_QUIZZES_MAX_QUESTIONS",
	InputChars:       "SERVICE_QUIZZES_INPUT_CHARS",
}

var tutorEnv = &tutor.Env{
	Timeout:      "SERVICE_TUTOR_TIMEOUT",
	ContextChars: "SERVICE_TUTOR_CONTEXT_CHARS",
	MaxMessages:  "SERVICE_TUTOR_MAX_MESSAGES",
}
