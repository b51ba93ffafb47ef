package ingest

import (
	"errors"
	"net/http"
	"strings"
)

// Pipeline errors. Each aborts the request that produced it.
var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidFile       = errors.New("invalid file")
	ErrRateLimited       = errors.New("rate limited")
	ErrContentRejected   = errors.New("content rejected")
	ErrPersistenceFailed = errors.New("failed to save note")
)

// RejectedError carries the moderation verdict for rejected content.
type RejectedError struct {
	Categories []string
	Reason     string
}

func (e *RejectedError) Error() string {
	if len(e.Categories) == 0 {
		return e.Reason
	}
	return e.Reason + " (" + strings.Join(e.Categories, ", ") + ")"
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrContentRejected
}

// MapHTTPStatus converts pipeline errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrInvalidFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrContentRejected):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
