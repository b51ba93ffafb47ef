package activities

import (
	"errors"
	"net/http"
)

// Domain errors for activity operations.
var (
	ErrNotFound     = errors.New("activity not found")
	ErrDuplicate    = errors.New("activity already exists")
	ErrInvalidInput = errors.New("invalid activity")
)

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
