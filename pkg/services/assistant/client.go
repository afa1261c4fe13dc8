// Package assistant calls the remote AI assistant API. Responses are opaque
// to the rest of the system and each action is a single request.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
)

var ErrNotConfigured = errors.New("assistant base url is not configured")

type ClientConfig struct {
	// BaseURL of the assistant API, e.g. https://assistant.example.org/v1
	BaseURL string

	// Timeout for a single call (default: 30s).
	Timeout time.Duration

	// RateLimit in requests per second (default: 1).
	RateLimit float64

	// Transport allows injecting a custom HTTP transport (for tests).
	Transport http.RoundTripper
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:   30 * time.Second,
		RateLimit: 1,
	}
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 1
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
	}, nil
}

type AskRequest struct {
	Prompt string `json:"prompt"`
	Region string `json:"region,omitempty"`
	Year   int    `json:"year,omitempty"`
	Season string `json:"season,omitempty"`
}

type PredictRequest struct {
	Region string `json:"region"`
	Year   int    `json:"year"`
}

// Answer is the assistant reply. Text holds the "answer" field when the
// response has one; Raw is always the full response body.
type Answer struct {
	Text string          `json:"answer"`
	Raw  json.RawMessage `json:"-"`
}

// Ask sends a free-form question scoped to the current selection.
func (c *Client) Ask(ctx context.Context, prompt string, sel domain.Selection) (*Answer, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}
	req := AskRequest{Prompt: prompt, Year: sel.Year, Season: string(sel.Season)}
	if !sel.IsAllRegions() {
		req.Region = sel.Region
	}
	return c.post(ctx, "/ask", req)
}

// Predict requests the assistant's outlook for one region and year.
func (c *Client) Predict(ctx context.Context, region string, year int) (*Answer, error) {
	if region == "" || year <= 0 {
		return nil, fmt.Errorf("region and year are required")
	}
	return c.post(ctx, "/predict", PredictRequest{Region: region, Year: year})
}

func (c *Client) post(ctx context.Context, path string, payload any) (*Answer, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assistant request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read assistant response: %w", err)
	}
	zerolog.Ctx(ctx).Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("assistant call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("assistant returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	answer := &Answer{Raw: json.RawMessage(data)}
	if err := json.Unmarshal(data, answer); err != nil {
		return nil, fmt.Errorf("failed to decode assistant response: %w", err)
	}
	return answer, nil
}
