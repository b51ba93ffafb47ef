// Package ratelimit bounds how often a requester may start an ingestion
// within a rolling time window.
package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

// Decision is a store's answer for one attempt.
type Decision struct {
	Allowed bool
	// Count is the number of attempts in the window, including this one when allowed.
	Count int
	// RetryAfter is set on denial: the time until the oldest attempt leaves the window.
	RetryAfter time.Duration
}

// Store records attempts atomically. A denied attempt is not recorded.
type Store interface {
	Record(ctx context.Context, key string, now time.Time, window time.Duration, max int) (Decision, error)
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now as the limiter's time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// Limiter applies a sliding-window limit per requester.
type Limiter struct {
	store  Store
	window time.Duration
	max    int
	now    func() time.Time
	logger *slog.Logger
}

// New creates a Limiter over store.
func New(cfg *Config, store Store, logger *slog.Logger, opts ...Option) *Limiter {
	l := &Limiter{
		store:  store,
		window: cfg.WindowDuration(),
		max:    cfg.MaxRequests,
		now:    time.Now,
		logger: logger.With("system", "ratelimit"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CheckAndRecord records an attempt for requesterID. It returns a *LimitError
// when the requester already has the maximum attempts within the window.
// Store failures allow the attempt.
func (l *Limiter) CheckAndRecord(ctx context.Context, requesterID string) error {
	d, err := l.store.Record(ctx, requesterID, l.now(), l.window, l.max)
	if err != nil {
		l.logger.Warn("rate limit store failed, allowing request", "requester", requesterID, "error", err)
		return nil
	}

	if !d.Allowed {
		l.logger.Info("rate limit exceeded", "requester", requesterID, "count", d.Count, "retry_after", d.RetryAfter)
		return &LimitError{Max: l.max, Window: l.window, RetryAfter: d.RetryAfter}
	}

	return nil
}
