package tutor

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/study-lab/pkg/handlers"
	"github.com/JaimeStill/study-lab/pkg/routes"
)

const maxChatBytes = 256 << 10

// Handler provides the tutor chat endpoint.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a tutor handler.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "tutor"),
	}
}

// Routes returns the tutor endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/chat",
		Description: "AI tutor chat over study material",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Chat},
		},
	}
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[ChatRequest](w, r, maxChatBytes)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	reply, err := h.sys.Chat(r.Context(), req)
	if err != nil {
		// Upstream error text stays in the log.
		switch status := MapHTTPStatus(err); status {
		case http.StatusBadGateway, http.StatusInternalServerError:
			h.logger.Error("chat failed", "error", err, "status", status)
			handlers.RespondJSON(w, status, map[string]string{"error": ErrChatFailed.Error()})
		default:
			handlers.RespondError(w, h.logger, status, err)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, reply)
}
