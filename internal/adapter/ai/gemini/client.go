// Package gemini implements a completion client for the Gemini API via the Google GenAI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/genai"

	"github.com/ParthivReddyY/ai-interviewer/internal/adapter/ai"
	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
)

const (
	// Provider is the name reported in errors and metrics.
	Provider     = "gemini"
	defaultModel = "gemini-2.0-flash"
)

// Options configures a Client.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// contentGenerator is the slice of *genai.Models the client needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client issues single GenerateContent calls. It never retries.
type Client struct {
	models contentGenerator
	model  string
	config *genai.GenerateContentConfig
}

var _ domain.Completer = (*Client)(nil)

// New creates a Client bound to the Gemini API backend.
func New(ctx context.Context, opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini api key is required", domain.ErrInvalidArgument)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: opts.Timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newWithGenerator(client.Models, opts), nil
}

func newWithGenerator(models contentGenerator, opts Options) *Client {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(opts.Temperature)}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	return &Client{models: models, model: model, config: cfg}
}

// Complete sends prompt and joins the text parts of every candidate.
func (c *Client) Complete(ctx domain.Context, prompt string) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), c.config)
	if err != nil {
		return "", toServiceError(err)
	}
	if resp == nil {
		return "", &ai.ServiceError{Provider: Provider, Message: "empty completion"}
	}

	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(strings.TrimSpace(part.Text))
		}
	}
	if b.Len() == 0 {
		msg := "empty completion"
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", &ai.ServiceError{Provider: Provider, StatusCode: http.StatusBadRequest,
				Message: "prompt blocked: " + string(resp.PromptFeedback.BlockReason)}
		}
		return "", &ai.ServiceError{Provider: Provider, Message: msg}
	}
	return b.String(), nil
}

func toServiceError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &ai.ServiceError{Provider: Provider, StatusCode: apiErr.Code, Message: apiMessage(apiErr), Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &ai.ServiceError{Provider: Provider, StatusCode: apiErrPtr.Code, Message: apiMessage(*apiErrPtr), Err: err}
	}
	return &ai.ServiceError{Provider: Provider, Message: "request failed", Err: err}
}

func apiMessage(e genai.APIError) string {
	switch {
	case e.Message != "" && e.Status != "":
		return e.Status + ": " + e.Message
	case e.Message != "":
		return e.Message
	}
	return e.Status
}
