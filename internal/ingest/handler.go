package ingest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/JaimeStill/study-lab/internal/notes"
	"github.com/JaimeStill/study-lab/internal/ratelimit"
	"github.com/JaimeStill/study-lab/pkg/handlers"
	"github.com/JaimeStill/study-lab/pkg/routes"
	"github.com/docker/go-units"
)

const (
	maxTextBytes  = 2 << 20
	maxFieldBytes = 64 << 10
)

// Handler exposes the upload and pasted-text endpoints.
type Handler struct {
	pipeline      *Pipeline
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates an ingestion handler. maxUploadSize caps a whole multipart request.
func NewHandler(pipeline *Pipeline, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		pipeline:      pipeline,
		logger:        logger.With("handler", "ingest"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the ingestion route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/notes",
		Description: "Note ingestion from files and pasted text",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/upload", Handler: h.Upload},
			{Method: "POST", Pattern: "/text", Handler: h.Text},
		},
	}
}

// Upload streams the multipart body. Once user_id and title have been read,
// the request is admitted before the first file body is, so a rate-limited
// requester never has its files buffered. Clients that send files before
// those fields are admitted after the whole body is read.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxUploadSize {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, h.tooLarge())
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	mr, err := r.MultipartReader()
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrInvalidRequest, err))
		return
	}

	var req UploadRequest
	admitted := false

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			h.respondBodyError(w, err)
			return
		}

		if part.FileName() == "" {
			value, err := readField(part)
			if err != nil {
				h.respondBodyError(w, err)
				return
			}
			switch part.FormName() {
			case "user_id":
				req.UserID = value
			case "title":
				req.Title = value
			case "description":
				if value != "" {
					req.Description = &value
				}
			}
			continue
		}

		if part.FormName() != "files" {
			part.Close()
			continue
		}

		if !admitted && checkRequest(req.UserID, req.Title) == nil {
			if err := h.pipeline.Admit(r.Context(), req.UserID, req.Title); err != nil {
				h.respondError(w, err)
				return
			}
			admitted = true
		}

		f, err := readFile(part)
		if err != nil {
			h.respondBodyError(w, err)
			return
		}
		req.Files = append(req.Files, f)
	}

	var n *notes.Note
	if admitted {
		n, err = h.pipeline.IngestAdmitted(r.Context(), req)
	} else {
		n, err = h.pipeline.Ingest(r.Context(), req)
	}
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, n)
}

func (h *Handler) Text(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[TextRequest](w, r, maxTextBytes)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	n, err := h.pipeline.IngestText(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, n)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if rejected, ok := IsRejected(err); ok {
		h.logger.Info("upload rejected", "categories", rejected.Categories)
		handlers.RespondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      "Content rejected",
			"categories": rejected.Categories,
			"reason":     rejected.Reason,
		})
		return
	}

	var limited *ratelimit.LimitError
	if errors.As(err, &limited) {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(limited.RetryAfter.Seconds()))))
		handlers.RespondJSON(w, http.StatusTooManyRequests, map[string]string{"error": limited.Error()})
		return
	}

	status := MapHTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("ingestion failed", "error", err)
		handlers.RespondJSON(w, status, map[string]string{"error": ErrPersistenceFailed.Error()})
		return
	}

	handlers.RespondError(w, h.logger, status, err)
}

func (h *Handler) tooLarge() error {
	return fmt.Errorf("upload exceeds %s", units.BytesSize(float64(h.maxUploadSize)))
}

func (h *Handler) respondBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, h.tooLarge())
		return
	}
	handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrInvalidRequest, err))
}

func readField(part *multipart.Part) (string, error) {
	defer part.Close()

	data, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
	if err != nil {
		return "", fmt.Errorf("read field %s: %w", part.FormName(), err)
	}
	if len(data) > maxFieldBytes {
		return "", fmt.Errorf("field %s exceeds %d bytes", part.FormName(), maxFieldBytes)
	}
	return string(data), nil
}

func readFile(part *multipart.Part) (RawFile, error) {
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		return RawFile{}, fmt.Errorf("read %s: %w", part.FileName(), err)
	}

	return RawFile{
		Name:        part.FileName(),
		ContentType: part.Header.Get("Content-Type"),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}
