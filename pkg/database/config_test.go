package database_test

import (
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/study-lab/pkg/database"
)

func TestConfig_Finalize_Defaults(t *testing.T) {
	cfg := &database.Config{Name: "study_lab", User: "study"}

	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Host != "localhost" {
		t.Errorf("Host = %q, want localhost", cfg.Host)
	}
	if cfg.Port != 5432 {
		t.Errorf("Port = %d, want 5432", cfg.Port)
	}
	if cfg.ConnMaxLifetimeDuration() != 15*time.Minute {
		t.Errorf("ConnMaxLifetimeDuration() = %v, want 15m", cfg.ConnMaxLifetimeDuration())
	}
	if cfg.ConnTimeoutDuration() != 5*time.Second {
		t.Errorf("ConnTimeoutDuration() = %v, want 5s", cfg.ConnTimeoutDuration())
	}
}

func TestConfig_Finalize_EnvOverrides(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")
	t.Setenv("TEST_DB_PORT", "6543")
	t.Setenv("TEST_DB_NAME", "notes")
	t.Setenv("TEST_DB_USER", "svc")

	cfg := &database.Config{}
	env := &database.Env{
		Host: "TEST_DB_HOST",
		Port: "TEST_DB_PORT",
		Name: "TEST_DB_NAME",
		User: "TEST_DB_USER",
	}

	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	dsn := cfg.Dsn()
	for _, want := range []string{"host=db.internal", "port=6543", "dbname=notes", "user=svc"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("Dsn() = %q, missing %q", dsn, want)
		}
	}
}

func TestConfig_Finalize_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  database.Config
	}{
		{"missing name", database.Config{User: "svc"}},
		{"missing user", database.Config{Name: "notes"}},
		{"bad lifetime", database.Config{Name: "notes", User: "svc", ConnMaxLifetime: "forever"}},
		{"bad sslmode", database.Config{Name: "notes", User: "svc", SSLMode: "sometimes"}},
		{"idle exceeds open", database.Config{Name: "notes", User: "svc", MaxOpenConns: 2, MaxIdleConns: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Error("Finalize() should fail")
			}
		})
	}
}

func TestConfig_Dsn_Override(t *testing.T) {
	t.Setenv("TEST_DB_DSN", "postgres://svc@db.internal/notes")

	cfg := &database.Config{}
	if err := cfg.Finalize(&database.Env{DSN: "TEST_DB_DSN"}); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if got := cfg.Dsn(); got != "postgres://svc@db.internal/notes" {
		t.Errorf("Dsn() = %q, want override", got)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := &database.Config{Host: "localhost", Port: 5432, Name: "study_lab"}
	cfg.Merge(&database.Config{Host: "db.prod", MaxOpenConns: 50, SSLMode: "require"})

	if cfg.Host != "db.prod" || cfg.Port != 5432 || cfg.Name != "study_lab" {
		t.Errorf("Merge() = %+v", cfg)
	}
	if cfg.MaxOpenConns != 50 || cfg.SSLMode != "require" {
		t.Errorf("Merge() = %+v", cfg)
	}
}
