package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultSweepThreshold is the tracked-key count above which stale keys are swept.
const DefaultSweepThreshold = 1000

// MemoryStore keeps attempt timestamps in process memory.
type MemoryStore struct {
	mu             sync.Mutex
	entries        map[string][]time.Time
	sweepThreshold int
}

// NewMemoryStore creates a MemoryStore. A threshold below one uses DefaultSweepThreshold.
func NewMemoryStore(sweepThreshold int) *MemoryStore {
	if sweepThreshold < 1 {
		sweepThreshold = DefaultSweepThreshold
	}
	return &MemoryStore{
		entries:        make(map[string][]time.Time),
		sweepThreshold: sweepThreshold,
	}
}

func (s *MemoryStore) Record(_ context.Context, key string, now time.Time, window time.Duration, max int) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recent := prune(s.entries[key], now, window)

	if len(recent) >= max {
		s.entries[key] = recent
		return Decision{
			Allowed:    false,
			Count:      len(recent),
			RetryAfter: recent[0].Add(window).Sub(now),
		}, nil
	}

	recent = append(recent, now)
	s.entries[key] = recent

	if len(s.entries) > s.sweepThreshold {
		s.sweep(now, 2*window)
	}

	return Decision{Allowed: true, Count: len(recent)}, nil
}

// Len reports the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// prune drops timestamps at least window old. Timestamps are stored in ascending order.
func prune(ts []time.Time, now time.Time, window time.Duration) []time.Time {
	i := 0
	for i < len(ts) && now.Sub(ts[i]) >= window {
		i++
	}
	if i == 0 {
		return ts
	}
	return append([]time.Time(nil), ts[i:]...)
}

func (s *MemoryStore) sweep(now time.Time, maxAge time.Duration) {
	for key, ts := range s.entries {
		if len(ts) == 0 || now.Sub(ts[len(ts)-1]) > maxAge {
			delete(s.entries, key)
		}
	}
}
