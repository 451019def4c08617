// Package openrouter implements a completion client for OpenRouter's
// OpenAI-compatible chat completions endpoint.
package openrouter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ParthivReddyY/ai-interviewer/internal/adapter/ai"
	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
	intobs "github.com/ParthivReddyY/ai-interviewer/internal/observability"
)

const (
	// Provider is the name reported in errors and metrics.
	Provider = "openrouter"
	// DefaultBaseURL is used when Options.BaseURL is empty.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	maxErrorBody = 512
)

// Options configures a Client.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	// Referer and Title populate OpenRouter's attribution headers.
	Referer string
	Title   string
	// HTTPClient overrides the instrumented default client.
	HTTPClient *http.Client
}

// Client issues single chat completion calls. It never retries.
type Client struct {
	opts Options
	hc   *http.Client
}

var _ domain.Completer = (*Client)(nil)

// New constructs a Client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{opts: opts, hc: hc}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type apiError struct {
	Code    json.RawMessage `json:"code"`
	Message string          `json:"message"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

// Complete sends prompt as a single user message and returns the first choice's content.
func (c *Client) Complete(ctx domain.Context, prompt string) (string, error) {
	lg := intobs.LoggerFromContext(ctx)
	body, err := json.Marshal(chatRequest{
		Model:       c.opts.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	})
	if err != nil {
		return "", &ai.ServiceError{Provider: Provider, Message: "encode request", Err: err}
	}

	endpoint := c.opts.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &ai.ServiceError{Provider: Provider, Message: "build request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.opts.Referer != "" {
		req.Header.Set("HTTP-Referer", c.opts.Referer)
	}
	if c.opts.Title != "" {
		req.Header.Set("X-Title", c.opts.Title)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", &ai.ServiceError{Provider: Provider, Message: "request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ai.ServiceError{Provider: Provider, StatusCode: resp.StatusCode, Message: "read body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := errorMessage(raw)
		lg.Warn("openrouter non-2xx",
			slog.String("provider", Provider),
			slog.String("model", c.opts.Model),
			slog.Int("status", resp.StatusCode),
			slog.String("x_request_id", resp.Header.Get("X-Request-Id")),
			slog.String("body", msg))
		return "", &ai.ServiceError{Provider: Provider, StatusCode: resp.StatusCode, Message: msg}
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &ai.ServiceError{Provider: Provider, StatusCode: resp.StatusCode, Message: "decode response", Err: err}
	}
	// OpenRouter reports some upstream failures inside a 200 body.
	if out.Error != nil {
		code := embeddedStatus(out.Error.Code)
		return "", &ai.ServiceError{Provider: Provider, StatusCode: code, Message: out.Error.Message}
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", &ai.ServiceError{Provider: Provider, Message: "empty completion"}
	}
	if out.Model != "" && c.opts.Model != "" && out.Model != c.opts.Model {
		lg.Debug("model substitution detected",
			slog.String("requested_model", c.opts.Model),
			slog.String("actual_model", out.Model))
	}
	return out.Choices[0].Message.Content, nil
}

// errorMessage prefers the structured error message and falls back to a body snippet.
func errorMessage(raw []byte) string {
	var env struct {
		Error *apiError `json:"error"`
	}
	if json.Unmarshal(raw, &env) == nil && env.Error != nil && env.Error.Message != "" {
		return env.Error.Message
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	if s == "" {
		return "empty error body"
	}
	return s
}

// embeddedStatus reads an HTTP-like status from an error code that may be a number or a string.
func embeddedStatus(code json.RawMessage) int {
	var n int
	if json.Unmarshal(code, &n) == nil && n >= 100 && n < 600 {
		return n
	}
	var s string
	if json.Unmarshal(code, &s) == nil {
		if _, err := fmt.Sscanf(s, "%d", &n); err == nil && n >= 100 && n < 600 {
			return n
		}
	}
	return http.StatusBadGateway
}
