package gemini

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/ParthivReddyY/ai-interviewer/internal/adapter/ai"
	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
)

type fakeModels struct {
	resp   *genai.GenerateContentResponse
	err    error
	model  string
	prompt string
	config *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: genai.RoleModel}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestComplete_JoinsTextParts(t *testing.T) {
	t.Parallel()

	fm := &fakeModels{resp: textResponse(`{"questions":`, "  ", `[]}`)}
	c := newWithGenerator(fm, Options{Model: "gemini-1.5-flash", Temperature: 0.4, MaxTokens: 512})

	out, err := c.Complete(context.Background(), "generate")
	require.NoError(t, err)
	assert.Equal(t, "{\"questions\":\n[]}", out)
	assert.Equal(t, "gemini-1.5-flash", fm.model)
	assert.Equal(t, "generate", fm.prompt)
	require.NotNil(t, fm.config.Temperature)
	assert.InDelta(t, 0.4, *fm.config.Temperature, 1e-6)
	assert.EqualValues(t, 512, fm.config.MaxOutputTokens)
}

func TestComplete_DefaultModel(t *testing.T) {
	t.Parallel()

	fm := &fakeModels{resp: textResponse("ok")}
	_, err := newWithGenerator(fm, Options{}).Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, defaultModel, fm.model)
}

func TestComplete_APIErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		reason ai.Reason
	}{
		{"resource exhausted", genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED", Message: "Quota exceeded"}, 429, ai.ReasonRateLimit},
		{"unavailable", genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE", Message: "The model is overloaded"}, 503, ai.ReasonUnavailable},
		{"invalid key", genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT", Message: "API key not valid"}, 400, ai.ReasonRejected},
		{"transport", errors.New("dial tcp: connection refused"), 0, ai.ReasonNetwork},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := newWithGenerator(&fakeModels{err: tt.err}, Options{}).Complete(context.Background(), "p")
			var se *ai.ServiceError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.StatusCode)
			_, reason := ai.Classify(err)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestComplete_EmptyAndBlocked(t *testing.T) {
	t.Parallel()

	_, err := newWithGenerator(&fakeModels{resp: &genai.GenerateContentResponse{}}, Options{}).Complete(context.Background(), "p")
	_, reason := ai.Classify(err)
	assert.Equal(t, ai.ReasonEmpty, reason)

	blocked := &genai.GenerateContentResponse{PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety}}
	_, err = newWithGenerator(&fakeModels{resp: blocked}, Options{}).Complete(context.Background(), "p")
	class, _ := ai.Classify(err)
	assert.Equal(t, ai.ErrorClassFatal, class)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Options{APIKey: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
