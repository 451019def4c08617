package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
	"github.com/ParthivReddyY/ai-interviewer/internal/domain/mocks"
	"github.com/ParthivReddyY/ai-interviewer/internal/service/resumeparse"
	"github.com/ParthivReddyY/ai-interviewer/internal/usecase"
)

const partialResume = "Skills: Go, Python, Docker\nContact: sam.lee@example.com"

func TestParseResumeText_RuleBasedSkipsModel(t *testing.T) {
	t.Parallel()
	llm := mocks.NewResilientCompleter(t)
	svc := usecase.NewResumeService(llm, resumeparse.New(), nil, 2, false)

	p := svc.ParseResumeText(context.Background(), "Jane Doe\njane.doe@example.com\n(555) 123-4567")

	assert.Equal(t, "Jane Doe", p.Name)
	assert.Equal(t, "jane.doe@example.com", p.Email)
	assert.NotEmpty(t, p.Phone)
	assert.Equal(t, domain.ParsingMethodFallback, p.ParsingMethod)
	assert.GreaterOrEqual(t, p.Confidence, 0.6)
	assert.LessOrEqual(t, p.Confidence, 0.8)
	assert.Equal(t, []string{domain.FieldLocation, domain.FieldSkills, domain.FieldExperience, domain.FieldEducation}, p.MissingFields)
}

func TestParseResumeText_RequireDetailCallsModel(t *testing.T) {
	t.Parallel()
	llm := mocks.NewResilientCompleter(t)
	llm.EXPECT().CompleteWithResilience(mock.Anything, mock.Anything, 2).
		Return(`{"skills": ["Go"], "experience": "Backend Developer at Acme", "confidence": 0.7}`, nil).Once()
	svc := usecase.NewResumeService(llm, resumeparse.New(), nil, 2, true)

	p := svc.ParseResumeText(context.Background(), "Jane Doe\njane.doe@example.com\n(555) 123-4567")

	assert.Equal(t, domain.ParsingMethodHybrid, p.ParsingMethod)
	assert.Equal(t, "Jane Doe", p.Name)
	assert.Equal(t, []string{"Go"}, p.Skills)
	assert.InDelta(t, 0.7, p.Confidence, 1e-9)
	assert.NotContains(t, p.MissingFields, domain.FieldSkills)
}

func TestParseResumeText_HybridMerge(t *testing.T) {
	t.Parallel()
	resp := "```json\n" + `{
		"name": "Sam Lee",
		"email": "SAM.LEE@example.com",
		"phone": "+1 555 987 6543",
		"location": null,
		"skills": ["Go", "Kubernetes", "go"],
		"experience": [{"title": "Backend Engineer", "company": "Acme", "duration": "2019-2023"}],
		"education": "N/A",
		"confidence": 0.9
	}` + "\n```"
	llm := mocks.NewResilientCompleter(t)
	llm.EXPECT().CompleteWithResilience(mock.Anything, mock.Anything, 2).Return(resp, nil).Once()

	p := usecase.NewResumeService(llm, resumeparse.New(), nil, 2, false).ParseResumeText(context.Background(), partialResume)

	assert.Equal(t, domain.ParsingMethodHybrid, p.ParsingMethod)
	assert.Equal(t, "Sam Lee", p.Name)
	assert.Equal(t, "sam.lee@example.com", p.Email)
	assert.Equal(t, "+1 555 987 6543", p.Phone)
	assert.Equal(t, []string{"Go", "Kubernetes"}, p.Skills)
	assert.Equal(t, "Backend Engineer, Acme, 2019-2023", p.Experience)
	assert.InDelta(t, 0.9, p.Confidence, 1e-9)
	assert.Equal(t, []string{domain.FieldLocation, domain.FieldEducation}, p.MissingFields)
}

func TestParseResumeText_ModelOnly(t *testing.T) {
	t.Parallel()
	llm := mocks.NewResilientCompleter(t)
	llm.EXPECT().CompleteWithResilience(mock.Anything, mock.Anything, 2).
		Return(`{"name": "Kim Park", "email": "not-an-email", "skills": "Rust; C++"}`, nil).Once()

	p := usecase.NewResumeService(llm, resumeparse.New(), nil, 2, false).
		ParseResumeText(context.Background(), "zzz qqq www eee rrr ttt yyy.")

	assert.Equal(t, domain.ParsingMethodAI, p.ParsingMethod)
	assert.Equal(t, "Kim Park", p.Name)
	assert.Empty(t, p.Email)
	assert.Equal(t, []string{"Rust", "C++"}, p.Skills)
	assert.InDelta(t, 0.5, p.Confidence, 1e-9)
	assert.Contains(t, p.MissingFields, domain.FieldEmail)
}

func TestParseResumeText_ModelConfidence(t *testing.T) {
	t.Parallel()
	cases := map[string]float64{
		`{"name": "Kim Park", "confidence": 85}`:     0.85,
		`{"name": "Kim Park", "confidence": 0.01}`:   0.1,
		`{"name": "Kim Park", "confidence": "0.75"}`: 0.75,
		`{"name": "Kim Park", "confidence": "high"}`: 0.5,
	}
	for resp, want := range cases {
		t.Run(resp, func(t *testing.T) {
			t.Parallel()
			llm := mocks.NewResilientCompleter(t)
			llm.EXPECT().CompleteWithResilience(mock.Anything, mock.Anything, 2).Return(resp, nil).Once()
			p := usecase.NewResumeService(llm, nil, nil, 2, false).ParseResumeText(context.Background(), "zzz qqq www eee rrr ttt yyy.")
			assert.InDelta(t, want, p.Confidence, 1e-9)
		})
	}
}

func TestParseResumeText_ModelFailure(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		text string
		resp string
		err  error
		conf float64
	}{
		{name: "partial profile", text: partialResume, err: domain.ErrUpstreamRateLimit, conf: 0.6},
		{name: "empty profile", text: "zzz qqq www eee rrr ttt yyy.", err: errors.New("status 400"), conf: 0.2},
		{name: "unparseable output", text: partialResume, resp: "Sure! The candidate is great.", conf: 0.6},
		{name: "no fields", text: partialResume, resp: `{"name": null, "confidence": 0.9}`, conf: 0.6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			llm := mocks.NewResilientCompleter(t)
			llm.EXPECT().CompleteWithResilience(mock.Anything, mock.Anything, 2).Return(tc.resp, tc.err).Once()
			cache := mocks.NewResumeCache(t)
			cache.EXPECT().Get(mock.Anything, mock.Anything).Return(domain.ResumeProfile{}, false, nil).Once()

			p := usecase.NewResumeService(llm, resumeparse.New(), cache, 2, false).ParseResumeText(context.Background(), tc.text)

			assert.Equal(t, domain.ParsingMethodFallback, p.ParsingMethod)
			assert.InDelta(t, tc.conf, p.Confidence, 1e-9)
			cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestParseResumeText_EmptyText(t *testing.T) {
	t.Parallel()
	llm := mocks.NewResilientCompleter(t)
	p := usecase.NewResumeService(llm, nil, nil, 2, false).ParseResumeText(context.Background(), " \x00\n\t ")

	assert.Equal(t, domain.ParsingMethodFallback, p.ParsingMethod)
	assert.InDelta(t, 0.2, p.Confidence, 1e-9)
	assert.Len(t, p.MissingFields, len(domain.RequiredResumeFields)+len(domain.OptionalResumeFields))
}

func TestParseResumeText_Cache(t *testing.T) {
	t.Parallel()

	t.Run("hit skips parsing", func(t *testing.T) {
		t.Parallel()
		llm := mocks.NewResilientCompleter(t)
		cache := mocks.NewResumeCache(t)
		cached := domain.ResumeProfile{Name: "Cached Person", ParsingMethod: domain.ParsingMethodAI, Confidence: 0.9}
		cache.EXPECT().Get(mock.Anything, mock.Anything).Return(cached, true, nil).Once()

		p := usecase.NewResumeService(llm, nil, cache, 2, false).ParseResumeText(context.Background(), partialResume)
		assert.Equal(t, "Cached Person", p.Name)
		assert.Equal(t, domain.ParsingMethodAI, p.ParsingMethod)
		assert.Contains(t, p.MissingFields, domain.FieldEmail)
	})

	t.Run("miss stores result", func(t *testing.T) {
		t.Parallel()
		llm := mocks.NewResilientCompleter(t)
		cache := mocks.NewResumeCache(t)
		var key string
		cache.EXPECT().Get(mock.Anything, mock.Anything).RunAndReturn(func(_ context.Context, k string) (domain.ResumeProfile, bool, error) {
			key = k
			return domain.ResumeProfile{}, false, nil
		}).Once()
		cache.EXPECT().Set(mock.Anything, mock.Anything, mock.MatchedBy(func(p domain.ResumeProfile) bool {
			return p.ParsingMethod == domain.ParsingMethodFallback && p.Email == "jane.doe@example.com"
		})).Return(nil).Once()

		usecase.NewResumeService(llm, nil, cache, 2, false).
			ParseResumeText(context.Background(), "Jane Doe\njane.doe@example.com\n(555) 123-4567")
		require.Len(t, key, len("v1:")+64)
	})

	t.Run("errors are ignored", func(t *testing.T) {
		t.Parallel()
		llm := mocks.NewResilientCompleter(t)
		cache := mocks.NewResumeCache(t)
		cache.EXPECT().Get(mock.Anything, mock.Anything).Return(domain.ResumeProfile{}, false, errors.New("connection refused")).Once()
		cache.EXPECT().Set(mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()

		p := usecase.NewResumeService(llm, nil, cache, 2, false).
			ParseResumeText(context.Background(), "Jane Doe\njane.doe@example.com\n(555) 123-4567")
		assert.Equal(t, "Jane Doe", p.Name)
	})
}
