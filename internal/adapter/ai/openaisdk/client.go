// Package openaisdk implements a completion client on top of the go-openai SDK.
// It serves OpenAI and any endpoint speaking the same chat completions protocol.
package openaisdk

import (
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ParthivReddyY/ai-interviewer/internal/adapter/ai"
	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
)

// Provider is the name reported in errors and metrics.
const Provider = "openai"

const defaultModel = openai.GPT4oMini

// Options configures a Client.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Client issues single chat completion calls. It never retries.
type Client struct {
	client *openai.Client
	model  string
	opts   Options
}

var _ domain.Completer = (*Client)(nil)

// New constructs a Client.
func New(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	} else {
		cfg.HTTPClient = &http.Client{Timeout: opts.Timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	return &Client{client: openai.NewClientWithConfig(cfg), model: model, opts: opts}
}

// Complete sends prompt as a single user message and returns the first choice's content.
func (c *Client) Complete(ctx domain.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", toServiceError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &ai.ServiceError{Provider: Provider, Message: "empty completion"}
	}
	return resp.Choices[0].Message.Content, nil
}

// toServiceError keeps the HTTP status from SDK errors so the gateway can classify them.
func toServiceError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ai.ServiceError{Provider: Provider, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := "request failed"
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &ai.ServiceError{Provider: Provider, StatusCode: reqErr.HTTPStatusCode, Message: msg, Err: err}
	}
	return &ai.ServiceError{Provider: Provider, Message: "request failed", Err: err}
}
