// Package tokencount estimates token usage of completion calls.
//
// It uses tiktoken-go, a Go port of OpenAI's tiktoken, for every provider.
// Non-OpenAI models are approximated with the cl100k_base encoding, which is
// close enough for usage dashboards and cost trends.
package tokencount

import (
	"log/slog"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Usage is the estimated token count of one prompt/completion pair.
type Usage struct {
	PromptTokens     int    `json:"promptTokens"`
	CompletionTokens int    `json:"completionTokens"`
	TotalTokens      int    `json:"totalTokens"`
	Model            string `json:"model"`
}

// Counter provides thread-safe token counting with cached encodings.
type Counter struct {
	encodingCache map[string]*tiktoken.Tiktoken
	mu            sync.RWMutex
}

// NewCounter creates a new token counter instance.
func NewCounter() *Counter {
	return &Counter{encodingCache: make(map[string]*tiktoken.Tiktoken)}
}

// DefaultCounter is a process-wide counter.
var DefaultCounter = NewCounter()

func (c *Counter) encodingFor(model string) (*tiktoken.Tiktoken, error) {
	key := normalizeModelName(model)

	c.mu.RLock()
	enc, ok := c.encodingCache[key]
	c.mu.RUnlock()
	if ok {
		return enc, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.encodingCache[key]; ok {
		return enc, nil
	}

	enc, err := tiktoken.EncodingForModel(key)
	if err != nil {
		slog.Debug("falling back to cl100k_base encoding", slog.String("model", model), slog.Any("error", err))
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	c.encodingCache[key] = enc
	return enc, nil
}

// normalizeModelName maps provider model IDs to a tiktoken model name.
func normalizeModelName(model string) string {
	model = strings.ToLower(strings.TrimSpace(model))
	// "models/gemini-2.0-flash", "meta-llama/llama-3.1-8b-instruct:free"
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	model = strings.TrimSuffix(model, ":free")

	switch {
	case strings.HasPrefix(model, "gpt-3.5"):
		return "gpt-3.5-turbo"
	default:
		return "gpt-4"
	}
}

// CountTokens counts the tokens of text under the model's encoding.
func (c *Counter) CountTokens(text, model string) (int, error) {
	enc, err := c.encodingFor(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// Estimate counts prompt and completion tokens. When no encoding can be
// loaded it falls back to roughly four characters per token.
func (c *Counter) Estimate(prompt, completion, model string) Usage {
	p, err := c.CountTokens(prompt, model)
	if err != nil {
		p = roughCount(prompt)
	}
	cpl, err := c.CountTokens(completion, model)
	if err != nil {
		cpl = roughCount(completion)
	}
	return Usage{PromptTokens: p, CompletionTokens: cpl, TotalTokens: p + cpl, Model: model}
}

func roughCount(s string) int {
	if s == "" {
		return 0
	}
	return len(s)/4 + 1
}
