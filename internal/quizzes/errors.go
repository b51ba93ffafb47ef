package quizzes

import (
	"errors"
	"net/http"
)

// Domain errors for quiz operations.
var (
	ErrNotFound        = errors.New("quiz not found")
	ErrDuplicate       = errors.New("quiz already exists")
	ErrNoteNotFound    = errors.New("note not found")
	ErrInvalidRequest  = errors.New("invalid quiz request")
	ErrUnavailable     = errors.New("quiz generation unavailable")
	ErrParseResponse   = errors.New("failed to parse quiz response")
	ErrGenerationError = errors.New("quiz generation failed")
)

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoteNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrParseResponse), errors.Is(err, ErrGenerationError):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
