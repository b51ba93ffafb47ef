package ratelimit

import (
	"errors"
	"fmt"
	"time"
)

// ErrRateLimited matches every *LimitError.
var ErrRateLimited = errors.New("rate limit exceeded")

// LimitError reports a denied attempt and when the next one can succeed.
type LimitError struct {
	Max        int
	Window     time.Duration
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	if e.Window == time.Minute {
		return fmt.Sprintf("Rate limit exceeded. Maximum %d uploads per minute.", e.Max)
	}
	return fmt.Sprintf("Rate limit exceeded. Maximum %d uploads per %s.", e.Max, e.Window)
}

func (e *LimitError) Is(target error) bool {
	return target == ErrRateLimited
}
