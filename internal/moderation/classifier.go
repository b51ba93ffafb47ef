package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
)

// maxResponseBytes bounds the classifier response body read.
const maxResponseBytes = 1 << 20

// HTTPClassifier calls an OpenAI-compatible moderations endpoint.
type HTTPClassifier struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// NewHTTPClassifier returns nil when cfg carries no API key.
func NewHTTPClassifier(cfg *Config, client *http.Client) *HTTPClassifier {
	if cfg.APIKey == "" {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.TimeoutDuration()}
	}
	return &HTTPClassifier{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		client:   client,
	}
}

type moderationRequest struct {
	Model string `json:"model,omitempty"`
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged    bool            `json:"flagged"`
		Categories map[string]bool `json:"categories"`
	} `json:"results"`
}

// Classify returns the sorted names of flagged categories.
func (c *HTTPClassifier) Classify(ctx context.Context, text string) ([]string, error) {
	if c == nil {
		return nil, ErrClassifierUnavailable
	}

	body, err := json.Marshal(moderationRequest{Model: c.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrClassifierUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrClassifierUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrClassifierUnavailable, resp.StatusCode)
	}

	var parsed moderationResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrClassifierUnavailable, err)
	}
	if len(parsed.Results) == 0 {
		return nil, fmt.Errorf("%w: empty results", ErrClassifierUnavailable)
	}

	result := parsed.Results[0]
	if !result.Flagged {
		return nil, nil
	}

	var categories []string
	for name, flagged := range result.Categories {
		if flagged {
			categories = append(categories, name)
		}
	}
	sort.Strings(categories)

	if len(categories) == 0 {
		categories = []string{"flagged"}
	}
	return categories, nil
}
