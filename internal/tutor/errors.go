package tutor

import (
	"errors"
	"net/http"
)

// Domain errors for tutor chat.
var (
	ErrInvalidRequest = errors.New("invalid chat request")
	ErrUnavailable    = errors.New("tutor chat unavailable")
	ErrChatFailed     = errors.New("failed to process chat")
)

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrChatFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
