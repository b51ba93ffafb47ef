package api

import (
	"net/http"

	"github.com/JaimeStill/study-lab/internal/activities"
	"github.com/JaimeStill/study-lab/internal/config"
	"github.com/JaimeStill/study-lab/internal/ingest"
	"github.com/JaimeStill/study-lab/internal/notes"
	"github.com/JaimeStill/study-lab/internal/quizzes"
	"github.com/JaimeStill/study-lab/internal/tutor"
	"github.com/JaimeStill/study-lab/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	runtime *Runtime,
	domain *Domain,
	cfg *config.Config,
) {
	ingestHandler := ingest.NewHandler(domain.Ingest, runtime.Logger, cfg.Storage.MaxUploadSizeBytes())
	notesHandler := notes.NewHandler(domain.Notes, runtime.Logger, runtime.Pagination)
	activitiesHandler := activities.NewHandler(domain.Activities, runtime.Logger, runtime.Pagination)
	quizzesHandler := quizzes.NewHandler(domain.Quizzes, runtime.Logger, runtime.Pagination)
	tutorHandler := tutor.NewHandler(domain.Tutor, runtime.Logger)

	routes.Register(
		mux,
		ingestHandler.Routes(),
		notesHandler.Routes(),
		activitiesHandler.Routes(),
		quizzesHandler.Routes(),
		tutorHandler.Routes(),
	)
}
