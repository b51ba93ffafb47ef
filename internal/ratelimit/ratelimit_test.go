package ratelimit_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/study-lab/internal/ratelimit"
	"github.com/JaimeStill/study-lab/pkg/logging"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Unix(1_700_000_000, 0)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func defaultConfig(t *testing.T) *ratelimit.Config {
	t.Helper()
	cfg := &ratelimit.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	return cfg
}

func exerciseWindow(t *testing.T, store ratelimit.Store) {
	t.Helper()

	clk := newClock()
	l := ratelimit.New(defaultConfig(t), store, logging.Discard(), ratelimit.WithClock(clk.Now))
	ctx := context.Background()

	for i := range 20 {
		if err := l.CheckAndRecord(ctx, "student-1"); err != nil {
			t.Fatalf("call %d: error = %v, want nil", i+1, err)
		}
		clk.Advance(time.Second)
	}

	err := l.CheckAndRecord(ctx, "student-1")
	if !errors.Is(err, ratelimit.ErrRateLimited) {
		t.Fatalf("21st call error = %v, want ErrRateLimited", err)
	}

	var le *ratelimit.LimitError
	if !errors.As(err, &le) {
		t.Fatalf("error %T is not *LimitError", err)
	}
	if le.Error() != "Rate limit exceeded. Maximum 20 uploads per minute." {
		t.Errorf("message = %q", le.Error())
	}
	if le.RetryAfter != 40*time.Second {
		t.Errorf("RetryAfter = %v, want 40s", le.RetryAfter)
	}

	if err := l.CheckAndRecord(ctx, "student-2"); err != nil {
		t.Errorf("other requester error = %v, want nil", err)
	}

	clk.Advance(40 * time.Second)
	if err := l.CheckAndRecord(ctx, "student-1"); err != nil {
		t.Errorf("call after oldest expired error = %v, want nil", err)
	}
}

func TestLimiter_MemoryStoreWindow(t *testing.T) {
	exerciseWindow(t, ratelimit.NewMemoryStore(0))
}

func TestLimiter_FullWindowReset(t *testing.T) {
	clk := newClock()
	l := ratelimit.New(defaultConfig(t), ratelimit.NewMemoryStore(0), logging.Discard(), ratelimit.WithClock(clk.Now))
	ctx := context.Background()

	for range 20 {
		if err := l.CheckAndRecord(ctx, "u"); err != nil {
			t.Fatalf("error = %v", err)
		}
	}
	if err := l.CheckAndRecord(ctx, "u"); err == nil {
		t.Fatal("21st call allowed, want denied")
	}

	clk.Advance(60 * time.Second)
	if err := l.CheckAndRecord(ctx, "u"); err != nil {
		t.Errorf("call after window error = %v, want nil", err)
	}
}

func TestLimiter_DeniedAttemptsNotRecorded(t *testing.T) {
	clk := newClock()
	cfg := defaultConfig(t)
	cfg.MaxRequests = 2
	l := ratelimit.New(cfg, ratelimit.NewMemoryStore(0), logging.Discard(), ratelimit.WithClock(clk.Now))
	ctx := context.Background()

	l.CheckAndRecord(ctx, "u")
	l.CheckAndRecord(ctx, "u")

	clk.Advance(30 * time.Second)
	for range 5 {
		if err := l.CheckAndRecord(ctx, "u"); err == nil {
			t.Fatal("call allowed, want denied")
		}
	}

	clk.Advance(30 * time.Second)
	if err := l.CheckAndRecord(ctx, "u"); err != nil {
		t.Errorf("error = %v, want nil once the recorded attempts expire", err)
	}
}

type failingStore struct{}

func (failingStore) Record(context.Context, string, time.Time, time.Duration, int) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("connection refused")
}

func TestLimiter_StoreFailureAllows(t *testing.T) {
	l := ratelimit.New(defaultConfig(t), failingStore{}, logging.Discard())

	for range 30 {
		if err := l.CheckAndRecord(context.Background(), "u"); err != nil {
			t.Fatalf("error = %v, want nil on store failure", err)
		}
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	store := ratelimit.NewMemoryStore(10)
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	window := time.Minute

	for i := range 10 {
		store.Record(ctx, fmt.Sprintf("old-%d", i), now, window, 20)
	}
	if store.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", store.Len())
	}

	later := now.Add(3 * window)
	store.Record(ctx, "fresh", later, window, 20)

	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after sweep", store.Len())
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := ratelimit.NewMemoryStore(0)
	now := time.Unix(1_700_000_000, 0)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, _ := store.Record(context.Background(), "u", now, time.Minute, 20)
			if d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 20 {
		t.Errorf("allowed = %d, want 20", allowed)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  ratelimit.Config
	}{
		{"bad window", ratelimit.Config{Window: "minute"}},
		{"negative window", ratelimit.Config{Window: "-1s"}},
		{"negative max", ratelimit.Config{MaxRequests: -1}},
		{"unknown store", ratelimit.Config{Store: "memcached"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Error("Finalize() error = nil, want error")
			}
		})
	}
}

func TestConfig_Env(t *testing.T) {
	t.Setenv("TEST_RL_MAX", "5")
	t.Setenv("TEST_RL_STORE", "redis")
	t.Setenv("TEST_REDIS_ADDR", "cache:6379")

	cfg := &ratelimit.Config{}
	err := cfg.Finalize(&ratelimit.Env{
		MaxRequests: "TEST_RL_MAX",
		Store:       "TEST_RL_STORE",
		Redis:       &ratelimit.RedisEnv{Addr: "TEST_REDIS_ADDR"},
	})
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.MaxRequests != 5 || cfg.Store != ratelimit.StoreRedis || cfg.Redis.Addr != "cache:6379" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.WindowDuration() != time.Minute {
		t.Errorf("WindowDuration() = %v", cfg.WindowDuration())
	}
}
