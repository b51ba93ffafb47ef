// Package summarizer produces short AI summaries of study material.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrUnavailable indicates no completer is configured.
var ErrUnavailable = errors.New("summarizer unavailable")

// ErrEmptySummary indicates the completer returned only whitespace.
var ErrEmptySummary = errors.New("empty summary")

const (
	systemPrompt = "You are an expert summarizer. Create concise, accurate summaries of study materials that highlight key points and main ideas."
	userPrompt   = "Summarize the following study material in 2-3 concise paragraphs:\n\n%s"
)

// Summarizer bounds input length and call duration around a Completer.
type Summarizer struct {
	completer  Completer
	timeout    time.Duration
	inputChars int
	logger     *slog.Logger
}

// New creates a Summarizer. A nil completer makes every call return ErrUnavailable.
func New(cfg *Config, completer Completer, logger *slog.Logger) *Summarizer {
	return &Summarizer{
		completer:  completer,
		timeout:    cfg.TimeoutDuration(),
		inputChars: cfg.InputChars,
		logger:     logger.With("system", "summarizer"),
	}
}

// Available reports whether a completer is configured.
func (s *Summarizer) Available() bool {
	return s.completer != nil
}

// Summarize returns a summary of the leading runes of content.
func (s *Summarizer) Summarize(ctx context.Context, content string) (string, error) {
	if s.completer == nil {
		return "", ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	input := Truncate(content, s.inputChars)

	start := time.Now()
	summary, err := s.completer.Complete(ctx, systemPrompt, fmt.Sprintf(userPrompt, input))
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", ErrEmptySummary
	}

	s.logger.Debug("summary generated", "input_runes", len([]rune(input)), "duration", time.Since(start))
	return summary, nil
}

// Truncate returns the first limit runes of text. A limit below one returns text unchanged.
func Truncate(text string, limit int) string {
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
