package activities

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/study-lab/pkg/handlers"
	"github.com/JaimeStill/study-lab/pkg/pagination"
	"github.com/JaimeStill/study-lab/pkg/routes"
)

// Handler provides HTTP endpoints for the activity log.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates an activity handler.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "activities"),
		pagination: pagination,
	}
}

// Routes returns the activity endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/activities",
		Description: "Ingestion and study activity log",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
