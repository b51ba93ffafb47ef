// Package moderation decides whether text is safe to store.
//
// Checks run in layers: length bounds, a local pattern blocklist, then an
// external classifier. When the classifier is absent or fails, moderation
// falls back to a minimal local check and otherwise allows the content.
package moderation

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Verdict categories produced by local checks.
const (
	CategoryInsufficient = "insufficient-content"
	CategoryExcessive    = "excessive-content"
	CategoryMalicious    = "malicious-content"
)

const (
	reasonTooShort   = "Content is too short to be meaningful"
	reasonTooLong    = "Content exceeds maximum allowed length"
	reasonSuspicious = "Content contains suspicious patterns"
	reasonViolation  = "Content violates community guidelines and cannot be uploaded"
)

// maxFailOpenNULs is the NUL count above which fail-open still rejects.
const maxFailOpenNULs = 10

var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(<script|javascript:|onerror=|onclick=)`),
	regexp.MustCompile(`(?i)(eval\(|exec\(|system\()`),
	regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`),
}

// Verdict is the outcome of moderating one text.
// An unsafe Verdict always carries at least one category or a reason.
type Verdict struct {
	Safe       bool     `json:"safe"`
	Categories []string `json:"categories,omitempty"`
	Reason     string   `json:"reason,omitempty"`
}

func unsafe(reason string, categories ...string) Verdict {
	return Verdict{Safe: false, Categories: categories, Reason: reason}
}

// Classifier returns the policy categories flagged for text. An empty result means nothing was flagged.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]string, error)
}

// Moderator applies the layered checks.
type Moderator struct {
	classifier    Classifier
	minLength     int
	maxLength     int
	classifyChars int
	timeout       time.Duration
	logger        *slog.Logger
}

// New creates a Moderator. A nil classifier is treated as permanently unavailable.
func New(cfg *Config, classifier Classifier, logger *slog.Logger) *Moderator {
	return &Moderator{
		classifier:    classifier,
		minLength:     cfg.MinLength,
		maxLength:     cfg.MaxLength,
		classifyChars: cfg.ClassifyChars,
		timeout:       cfg.TimeoutDuration(),
		logger:        logger.With("system", "moderation"),
	}
}

// Moderate checks text and returns a Verdict. It never returns an error:
// classifier failures degrade to the local fail-open check.
func (m *Moderator) Moderate(ctx context.Context, text string) Verdict {
	n := utf8.RuneCountInString(text)
	if n < m.minLength {
		return unsafe(reasonTooShort, CategoryInsufficient)
	}
	if n > m.maxLength {
		return unsafe(reasonTooLong, CategoryExcessive)
	}

	if v := m.Screen(text); !v.Safe {
		return v
	}

	if m.classifier == nil {
		m.logger.Debug("no classifier configured, applying fail-open checks")
		return failOpen(text)
	}

	categories, err := m.classify(ctx, truncate(text, m.classifyChars))
	if err != nil {
		m.logger.Warn("classifier unavailable, applying fail-open checks", "error", err)
		return failOpen(text)
	}

	if len(categories) > 0 {
		return unsafe(reasonViolation, categories...)
	}

	return Verdict{Safe: true}
}

// Screen runs only the local pattern blocklist. It is meant for text that still
// carries the markup a sanitizer would remove.
func (m *Moderator) Screen(text string) Verdict {
	for _, p := range suspiciousPatterns {
		if p.MatchString(text) {
			return unsafe(reasonSuspicious, CategoryMalicious)
		}
	}
	return Verdict{Safe: true}
}

func (m *Moderator) classify(ctx context.Context, text string) ([]string, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	categories, err := m.classifier.Classify(ctx, text)
	if err != nil {
		if errors.Is(err, ErrClassifierUnavailable) {
			return nil, err
		}
		return nil, errors.Join(ErrClassifierUnavailable, err)
	}
	return categories, nil
}

func failOpen(text string) Verdict {
	if strings.Contains(strings.ToLower(text), "<script") || strings.Count(text, "\x00") > maxFailOpenNULs {
		return unsafe(reasonSuspicious, CategoryMalicious)
	}
	return Verdict{Safe: true}
}

func truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	i := 0
	for pos := range text {
		if i == limit {
			return text[:pos]
		}
		i++
	}
	return text
}
