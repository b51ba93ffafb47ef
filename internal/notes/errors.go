package notes

import (
	"errors"
	"net/http"
)

// Domain errors for note operations.
var (
	ErrNotFound      = errors.New("note not found")
	ErrDuplicate     = errors.New("note already exists")
	ErrInvalidUpdate = errors.New("invalid note update")
)

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidUpdate) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
