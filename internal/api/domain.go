package api

import (
	"github.com/JaimeStill/study-lab/internal/activities"
	"github.com/JaimeStill/study-lab/internal/config"
	"github.com/JaimeStill/study-lab/internal/extractor"
	"github.com/JaimeStill/study-lab/internal/ingest"
	"github.com/JaimeStill/study-lab/internal/moderation"
	"github.com/JaimeStill/study-lab/internal/notes"
	"github.com/JaimeStill/study-lab/internal/quizzes"
	"github.com/JaimeStill/study-lab/internal/ratelimit"
	"github.com/JaimeStill/study-lab/internal/summarizer"
	"github.com/JaimeStill/study-lab/internal/tutor"
	"github.com/JaimeStill/study-lab/internal/validator"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Notes      notes.System
	Activities activities.System
	Quizzes    quizzes.System
	Tutor      tutor.System
	Ingest     *ingest.Pipeline
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	notesSys := notes.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	activitiesSys := activities.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	quizzesSys := quizzes.New(quizzes.Deps{
		DB:         runtime.Database.Connection(),
		Notes:      notesSys,
		Completer:  runtime.Completer,
		Activities: activitiesSys,
		Config:     &cfg.Quizzes,
		Logger:     runtime.Logger,
		Pagination: runtime.Pagination,
	})

	tutorSys := tutor.New(tutor.Deps{
		Notes:        notesSys,
		Conversation: runtime.Conversation,
		Config:       &cfg.Tutor,
		Logger:       runtime.Logger,
	})

	pipeline := ingest.New(ingest.Deps{
		Limiter:    ratelimit.New(&cfg.RateLimit, runtime.RateStore, runtime.Logger),
		Validator:  validator.New(cfg.Ingest.Rules()),
		Extractor:  extractor.New(runtime.Logger, extractor.WithConcurrency(cfg.Ingest.ExtractConcurrency)),
		Moderator:  moderation.New(&cfg.Moderation, runtime.Classifier, runtime.Logger),
		Summarizer: summarizer.New(&cfg.Summarizer, runtime.Completer, runtime.Logger),
		Notes:      notesSys,
		Activities: activitiesSys,
		Logger:     runtime.Logger,
	})

	return &Domain{
		Notes:      notesSys,
		Activities: activitiesSys,
		Quizzes:    quizzesSys,
		Tutor:      tutorSys,
		Ingest:     pipeline,
	}
}
