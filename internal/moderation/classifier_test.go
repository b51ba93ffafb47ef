package moderation_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/JaimeStill/study-lab/internal/moderation"
)

func newClassifier(t *testing.T, handler http.HandlerFunc) *moderation.HTTPClassifier {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &moderation.Config{Endpoint: srv.URL, APIKey: "sk-test"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	return moderation.NewHTTPClassifier(cfg, srv.Client())
}

func TestHTTPClassifier_Flagged(t *testing.T) {
	c := newClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body["input"] != "bad words" {
			t.Errorf("input = %q", body["input"])
		}

		w.Write([]byte(`{"results":[{"flagged":true,"categories":{"violence":true,"hate":true,"sexual":false}}]}`))
	})

	categories, err := c.Classify(context.Background(), "bad words")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if !slices.Equal(categories, []string{"hate", "violence"}) {
		t.Errorf("categories = %v", categories)
	}
}

func TestHTTPClassifier_Clean(t *testing.T) {
	c := newClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"flagged":false,"categories":{"violence":false}}]}`))
	})

	categories, err := c.Classify(context.Background(), "cells divide")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if len(categories) != 0 {
		t.Errorf("categories = %v, want none", categories)
	}
}

func TestHTTPClassifier_Unavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}},
		{"no results", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results":[]}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClassifier(t, tt.handler)
			_, err := c.Classify(context.Background(), "text")
			if !errors.Is(err, moderation.ErrClassifierUnavailable) {
				t.Errorf("Classify() error = %v, want ErrClassifierUnavailable", err)
			}
		})
	}
}

func TestNewHTTPClassifier_NoKey(t *testing.T) {
	cfg := &moderation.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if c := moderation.NewHTTPClassifier(cfg, nil); c != nil {
		t.Error("NewHTTPClassifier() = non-nil, want nil without api key")
	}
}
