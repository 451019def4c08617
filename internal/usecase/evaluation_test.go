package usecase_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ParthivReddyY/ai-interviewer/internal/adapter/ai"
	"github.com/ParthivReddyY/ai-interviewer/internal/config"
	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
	"github.com/ParthivReddyY/ai-interviewer/internal/domain/mocks"
	"github.com/ParthivReddyY/ai-interviewer/internal/service/fallback"
	"github.com/ParthivReddyY/ai-interviewer/internal/usecase"
)

func interview() ([]domain.Question, []domain.Answer) {
	qs := []domain.Question{
		{ID: "q1", Text: "What is a closure?", Difficulty: domain.DifficultyEasy, TimeLimitSeconds: 20},
		{ID: "q2", Text: "Explain HTTP caching.", Difficulty: domain.DifficultyEasy, TimeLimitSeconds: 20},
		{ID: "q3", Text: "Design a REST API for orders.", Difficulty: domain.DifficultyMedium, TimeLimitSeconds: 60},
		{ID: "q4", Text: "How do indexes work?", Difficulty: domain.DifficultyMedium, TimeLimitSeconds: 60},
		{ID: "q5", Text: "Design a chat system.", Difficulty: domain.DifficultyHard, TimeLimitSeconds: 120},
		{ID: "q6", Text: "Explain consistent hashing.", Difficulty: domain.DifficultyHard, TimeLimitSeconds: 120},
	}
	as := make([]domain.Answer, len(qs))
	for i, q := range qs {
		as[i] = domain.Answer{
			QuestionID:       q.ID,
			Text:             "I would use a database with an index and a cache in front of the API to keep latency low.",
			TimeSpentSeconds: 15,
		}
	}
	return qs, as
}

func isBatch(p string) bool  { return strings.Contains(p, `"evaluations"`) }
func isSingle(p string) bool { return strings.Contains(p, "evaluating one answer") }

func assertMean(t *testing.T, res domain.EvaluationResult) {
	t.Helper()
	var sum float64
	for _, a := range res.PerAnswer {
		sum += a.Score
		assert.GreaterOrEqual(t, a.Score, 1.0)
		assert.LessOrEqual(t, a.Score, 10.0)
		assert.LessOrEqual(t, len(a.Strengths), domain.MaxFeedbackItems)
		assert.LessOrEqual(t, len(a.Improvements), domain.MaxFeedbackItems)
	}
	assert.Equal(t, math.Round(sum/float64(len(res.PerAnswer))*100)/100, res.OverallScore)
}

func TestEvaluateAnswers_Batch(t *testing.T) {
	t.Parallel()
	qs, as := interview()
	resp := "```json\n" + `{"evaluations": [
		{"score": 8, "feedback": "Clear explanation.", "strengths": ["clear", "concise", "accurate", "extra"], "improvements": ["add example"]},
		{"score": 12, "feedback": "Excellent."},
		{"score": 0, "feedback": "Off topic."},
		{"score": "7", "feedback": "Good."},
		{"score": "6.5/10", "feedback": "Reasonable."},
		{"score": 9, "feedback": ""}
	]}` + "\n```"
	llm := mocks.NewResilientCompleter(t)
	llm.EXPECT().CompleteWithResilience(mock.Anything, mock.MatchedBy(isBatch), 2).Return(resp, nil).Once()

	svc := usecase.NewEvaluationService(llm, config.DefaultRetryBudgets())
	res, err := svc.EvaluateAnswers(context.Background(), qs, as)
	require.NoError(t, err)
	require.Len(t, res.PerAnswer, 6)

	scores := make([]float64, 6)
	for i, a := range res.PerAnswer {
		scores[i] = a.Score
		assert.Equal(t, as[i].QuestionID, a.QuestionID)
	}
	assert.Equal(t, []float64{8, 10, 1, 7, 6.5, 9}, scores)
	assert.Equal(t, 6.92, res.OverallScore)
	assert.Equal(t, []string{"clear", "concise", "accurate"}, res.PerAnswer[0].Strengths)
	assert.Equal(t, "Answer evaluated.", res.PerAnswer[5].Feedback)
	assertMean(t, res)
}

func TestEvaluateAnswers_NonNumericScoreFallsBackForThatAnswer(t *testing.T) {
	t.Parallel()
	qs, as := interview()
	resp := `{"evaluations": [
		{"score": 8, "feedback": "ok"}, {"score": 8, "feedback": "ok"}, {"score": "excellent", "feedback": "??"},
		{"score": "NaN", "feedback": "ok"}, {"score": "Infinity", "feedback": "ok"}, {"feedback": "no score"}
	]}`
	llm := mocks.NewResilientCompleter(t)
	llm.EXPECT().CompleteWithResilience(mock.Anything, mock.MatchedBy(isBatch), 2).Return(resp, nil).Once()

	res, err := usecase.NewEvaluationService(llm, config.DefaultRetryBudgets()).EvaluateAnswers(context.Background(), qs, as)
	require.NoError(t, err)

	for i, a := range res.PerAnswer {
		if i >= 2 {
			assert.True(t, strings.HasPrefix(a.Feedback, fallback.BackupPrefix), a.Feedback)
			assert.Equal(t, fallback.Evaluate(qs[i], as[i], false).Score, a.Score)
			continue
		}
		assert.Equal(t, 8.0, a.Score)
		assert.Equal(t, "ok", a.Feedback)
	}
	assertMean(t, res)
	assert.False(t, math.IsNaN(res.OverallScore))
}

func TestEvaluateAnswers_LengthMismatchUsesIndividualPath(t *testing.T) {
	t.Parallel()
	qs, as := interview()
	five := `{"evaluations": [{"score": 9}, {"score": 9}, {"score": 9}, {"score": 9}, {"score": 9}]}`
	llm := mocks.NewResilientCompleter(t)
	llm.EXPECT().CompleteWithResilience(mock.Anything, mock.MatchedBy(isBatch), 2).Return(five, nil).Once()
	llm.EXPECT().CompleteWithResilience(mock.Anything, mock.MatchedBy(isSingle), 2).
		Return(`{"score": 7, "feedback": "Solid.", "strengths": ["structure"], "improvements": ["depth"]}`, nil).Times(6)

	res, err := usecase.NewEvaluationService(llm, config.DefaultRetryBudgets()).EvaluateAnswers(context.Background(), qs, as)
	require.NoError(t, err)
	require.Len(t, res.PerAnswer, 6)
	for _, a := range res.PerAnswer {
		assert.Equal(t, 7.0, a.Score)
		assert.Equal(t, "Solid.", a.Feedback)
	}
	assert.Equal(t, 7.0, res.OverallScore)
}

func TestEvaluateAnswers_IndividualFailureIsPerAnswer(t *testing.T) {
	t.Parallel()
	qs, as := interview()
	llm := mocks.NewResilientCompleter(t)
	llm.EXPECT().CompleteWithResilience(mock.Anything, mock.MatchedBy(isBatch), 2).Return("I'm sorry, I cannot help with that.", nil).Once()
	llm.EXPECT().CompleteWithResilience(mock.Anything, mock.MatchedBy(isSingle), 2).Return(`{"score": 6}`, nil).Once()
	llm.EXPECT().CompleteWithResilience(mock.Anything, mock.MatchedBy(isSingle), 2).Return("", errors.New("status 400: bad request")).Once()
	llm.EXPECT().CompleteWithResilience(mock.Anything, mock.MatchedBy(isSingle), 2).Return(`{"score": 6}`, nil).Times(4)

	res, err := usecase.NewEvaluationService(llm, config.DefaultRetryBudgets()).EvaluateAnswers(context.Background(), qs, as)
	require.NoError(t, err)

	assert.Equal(t, 6.0, res.PerAnswer[0].Score)
	assert.True(t, strings.HasPrefix(res.PerAnswer[1].Feedback, fallback.BackupPrefix), res.PerAnswer[1].Feedback)
	for _, a := range res.PerAnswer[2:] {
		assert.Equal(t, 6.0, a.Score)
	}
	assertMean(t, res)
}

func TestEvaluateAnswers_HighDemandStopsIndividualCalls(t *testing.T) {
	t.Parallel()
	qs, as := interview()
	exhausted := &ai.ExhaustedError{Credentials: 2, HighDemand: true, Last: errors.New("status 503")}
	llm := mocks.NewResilientCompleter(t)
	llm.EXPECT().CompleteWithResilience(mock.Anything, mock.MatchedBy(isBatch), 2).Return("not json at all", nil).Once()
	llm.EXPECT().CompleteWithResilience(mock.Anything, mock.MatchedBy(isSingle), 2).Return(`{"score": 8}`, nil).Once()
	llm.EXPECT().CompleteWithResilience(mock.Anything, mock.MatchedBy(isSingle), 2).Return("", exhausted).Once()

	res, err := usecase.NewEvaluationService(llm, config.DefaultRetryBudgets()).EvaluateAnswers(context.Background(), qs, as)
	require.NoError(t, err)

	assert.Equal(t, 8.0, res.PerAnswer[0].Score)
	for _, a := range res.PerAnswer[1:] {
		assert.True(t, fallback.IsUnavailableFeedback(a.Feedback), a.Feedback)
	}
	assertMean(t, res)
}

func TestEvaluateAnswers_AllCredentialsExhausted(t *testing.T) {
	t.Parallel()
	qs, as := interview()
	exhausted := &ai.ExhaustedError{Credentials: 2, HighDemand: true, Last: errors.New("status 503")}
	llm := mocks.NewResilientCompleter(t)
	llm.EXPECT().CompleteWithResilience(mock.Anything, mock.MatchedBy(isBatch), 2).Return("", exhausted).Once()

	res, err := usecase.NewEvaluationService(llm, config.DefaultRetryBudgets()).EvaluateAnswers(context.Background(), qs, as)
	require.NoError(t, err)
	require.Len(t, res.PerAnswer, 6)
	for i, a := range res.PerAnswer {
		assert.Contains(t, a.Feedback, "AI service temporarily unavailable")
		assert.Contains(t, a.Feedback, "backup analysis")
		assert.Equal(t, fallback.Score(as[i].Text, as[i].TimeSpentSeconds, qs[i].Difficulty.TimeLimit()), a.Score)
	}
	assertMean(t, res)
}

func TestEvaluateAnswers_NoClient(t *testing.T) {
	t.Parallel()
	qs, as := interview()
	res, err := usecase.NewEvaluationService(nil, config.DefaultRetryBudgets()).EvaluateAnswers(context.Background(), qs, as)
	require.NoError(t, err)
	for _, a := range res.PerAnswer {
		assert.True(t, fallback.IsUnavailableFeedback(a.Feedback))
	}
}

func TestEvaluateAnswers_AlignsByQuestionID(t *testing.T) {
	t.Parallel()
	qs, as := interview()
	qs[0], qs[5] = qs[5], qs[0]
	var prompt string
	llm := mocks.NewResilientCompleter(t)
	llm.EXPECT().CompleteWithResilience(mock.Anything, mock.MatchedBy(isBatch), 2).
		RunAndReturn(func(_ context.Context, p string, _ int) (string, error) {
			prompt = p
			return `{"evaluations": [{"score": 5}, {"score": 5}, {"score": 5}, {"score": 5}, {"score": 5}, {"score": 5}]}`, nil
		}).Once()

	_, err := usecase.NewEvaluationService(llm, config.DefaultRetryBudgets()).EvaluateAnswers(context.Background(), qs, as)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Question 1 (easy, time limit 20s): What is a closure?")
	assert.Contains(t, prompt, "Question 6 (hard, time limit 120s): Explain consistent hashing.")
}

func TestEvaluateAnswers_InvalidInput(t *testing.T) {
	t.Parallel()
	qs, as := interview()
	unknown := append([]domain.Answer(nil), as...)
	unknown[3].QuestionID = "q404"

	cases := []struct {
		name string
		qs   []domain.Question
		as   []domain.Answer
	}{
		{name: "no answers", qs: qs, as: nil},
		{name: "length mismatch", qs: qs[:5], as: as},
		{name: "unknown question", qs: qs, as: unknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			llm := mocks.NewResilientCompleter(t)
			_, err := usecase.NewEvaluationService(llm, config.DefaultRetryBudgets()).EvaluateAnswers(context.Background(), tc.qs, tc.as)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestQuickEvaluate(t *testing.T) {
	t.Parallel()
	qs, as := interview()

	t.Run("model", func(t *testing.T) {
		t.Parallel()
		llm := mocks.NewResilientCompleter(t)
		llm.EXPECT().CompleteWithResilience(mock.Anything, mock.MatchedBy(isSingle), 1).
			Return(`{"score": 11, "feedback": "Great", "strengths": "clarity, depth", "improvements": []}`, nil).Once()

		r := usecase.NewEvaluationService(llm, config.DefaultRetryBudgets()).QuickEvaluate(context.Background(), qs[0], as[0])
		assert.Equal(t, 10.0, r.Score)
		assert.Equal(t, "Great", r.Feedback)
		assert.Equal(t, []string{"clarity", "depth"}, r.Strengths)
		assert.Empty(t, r.Improvements)
	})

	t.Run("heuristic on failure", func(t *testing.T) {
		t.Parallel()
		llm := mocks.NewResilientCompleter(t)
		llm.EXPECT().CompleteWithResilience(mock.Anything, mock.Anything, 1).Return("", domain.ErrUpstreamRateLimit).Once()

		r := usecase.NewEvaluationService(llm, config.DefaultRetryBudgets()).QuickEvaluate(context.Background(), qs[0], as[0])
		assert.Equal(t, fallback.Quick(qs[0], as[0], true), r)
	})

	for _, bad := range []string{`{"score": "great"}`, `{"score": "NaN"}`, `{"score": "-Inf"}`} {
		bad := bad
		t.Run("heuristic on bad output "+bad, func(t *testing.T) {
			t.Parallel()
			llm := mocks.NewResilientCompleter(t)
			llm.EXPECT().CompleteWithResilience(mock.Anything, mock.Anything, 1).Return(bad, nil).Once()

			r := usecase.NewEvaluationService(llm, config.DefaultRetryBudgets()).QuickEvaluate(context.Background(), qs[0], as[0])
			assert.Equal(t, fallback.Quick(qs[0], as[0], false), r)
		})
	}
}
