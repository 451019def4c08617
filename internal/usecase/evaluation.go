package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ParthivReddyY/ai-interviewer/internal/adapter/ai"
	obs "github.com/ParthivReddyY/ai-interviewer/internal/adapter/observability"
	"github.com/ParthivReddyY/ai-interviewer/internal/config"
	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
	intobs "github.com/ParthivReddyY/ai-interviewer/internal/observability"
	"github.com/ParthivReddyY/ai-interviewer/internal/service/fallback"
	"github.com/ParthivReddyY/ai-interviewer/pkg/textx"
)

const (
	defaultFeedback = "Answer evaluated."
	answerRunes     = 2000
)

// EvaluationService scores answers in batch, one by one, or quickly.
type EvaluationService struct {
	LLM     domain.ResilientCompleter
	Retries config.RetryBudgets

	extract *ai.Extractor
}

// NewEvaluationService constructs an EvaluationService. llm may be nil, in which
// case every answer is scored by the heuristic.
func NewEvaluationService(llm domain.ResilientCompleter, retries config.RetryBudgets) EvaluationService {
	return EvaluationService{LLM: llm, Retries: retries, extract: ai.NewExtractor()}
}

// EvaluateAnswers scores every answer against the question its QuestionID names.
// The result has the same length and order as answers. Only malformed input
// fails, with domain.ErrInvalidArgument.
func (s EvaluationService) EvaluateAnswers(ctx context.Context, questions []domain.Question, answers []domain.Answer) (domain.EvaluationResult, error) {
	aligned, err := alignQuestions(questions, answers)
	if err != nil {
		return domain.EvaluationResult{}, err
	}
	ctx, lg := intobs.WithOperation(ctx, "usecase.EvaluateAnswers")

	out, err := s.evaluateBatch(ctx, aligned, answers)
	switch {
	case err == nil:
	case highDemand(err) || s.LLM == nil:
		cause := fallbackCause(err)
		lg.Warn("batch evaluation unavailable, scoring with heuristic", slog.String("cause", cause), slog.Any("error", err))
		obs.ObserveFallback("evaluate_batch", cause)
		out = fallback.EvaluateAll(aligned, answers, true).PerAnswer
	default:
		lg.Warn("batch evaluation failed, evaluating individually", slog.String("cause", fallbackCause(err)), slog.Any("error", err))
		obs.ObserveFallback("evaluate_batch", fallbackCause(err))
		out = s.evaluateIndividually(ctx, aligned, answers)
	}

	res := domain.EvaluationResult{OverallScore: domain.MeanScore(out), PerAnswer: out}
	obs.ObserveOverallScore(res.OverallScore)
	lg.Info("answers evaluated", slog.Int("answers", len(out)), slog.Float64("overall_score", res.OverallScore))
	return res, nil
}

// QuickEvaluate scores one answer with a single low-budget attempt and falls
// back to the heuristic on any failure.
func (s EvaluationService) QuickEvaluate(ctx context.Context, q domain.Question, a domain.Answer) domain.QuickEvaluation {
	ctx, lg := intobs.WithOperation(ctx, "usecase.QuickEvaluate")
	r, err := s.evaluateOne(ctx, q, a, s.Retries.Quick)
	if err != nil {
		cause := fallbackCause(err)
		lg.Warn("quick evaluation failed, scoring with heuristic", slog.String("cause", cause), slog.Any("error", err))
		obs.ObserveFallback("evaluate_quick", cause)
		return fallback.Quick(q, a, highDemand(err) || s.LLM == nil)
	}
	return domain.QuickEvaluation{Score: r.Score, Feedback: r.Feedback, Strengths: r.Strengths, Improvements: r.Improvements}
}

func (s EvaluationService) evaluateBatch(ctx context.Context, questions []domain.Question, answers []domain.Answer) ([]domain.Answer, error) {
	raw, err := complete(ctx, s.LLM, batchPrompt(questions, answers), s.Retries.Batch)
	if err != nil {
		return nil, err
	}
	v, err := s.extractor().ExtractStructured(raw, ai.ShapeObject)
	if err != nil {
		return nil, err
	}
	evals, ok := v.(map[string]any)["evaluations"].([]any)
	if !ok {
		return nil, fmt.Errorf("op=usecase.evaluateBatch: %w: missing evaluations array", errInvalidOutput)
	}
	if len(evals) != len(answers) {
		return nil, fmt.Errorf("op=usecase.evaluateBatch: %w: got %d evaluations for %d answers", errInvalidOutput, len(evals), len(answers))
	}

	out := make([]domain.Answer, len(answers))
	for i, a := range answers {
		m, _ := evals[i].(map[string]any)
		r, ok := applyEvaluation(a, m)
		if !ok {
			intobs.LoggerFromContext(ctx).Warn("non-numeric score in batch evaluation", slog.Int("index", i))
			obs.ObserveFallback("evaluate_batch_item", causeInvalid)
			r = fallback.Evaluate(questions[i], a, false)
		}
		out[i] = r
	}
	return out, nil
}

// evaluateIndividually sends one request per answer. The first high-demand
// exhaustion sends the remaining answers straight to the heuristic.
func (s EvaluationService) evaluateIndividually(ctx context.Context, questions []domain.Question, answers []domain.Answer) []domain.Answer {
	lg := intobs.LoggerFromContext(ctx)
	out := make([]domain.Answer, len(answers))
	exhausted := false
	for i, a := range answers {
		if exhausted {
			out[i] = fallback.Evaluate(questions[i], a, true)
			continue
		}
		r, err := s.evaluateOne(ctx, questions[i], a, s.Retries.Individual)
		if err != nil {
			cause := fallbackCause(err)
			lg.Warn("individual evaluation failed, scoring with heuristic",
				slog.Int("index", i), slog.String("cause", cause), slog.Any("error", err))
			obs.ObserveFallback("evaluate_individual", cause)
			exhausted = highDemand(err)
			r = fallback.Evaluate(questions[i], a, exhausted)
		}
		out[i] = r
	}
	return out
}

func (s EvaluationService) evaluateOne(ctx context.Context, q domain.Question, a domain.Answer, retries int) (domain.Answer, error) {
	raw, err := complete(ctx, s.LLM, singlePrompt(q, a), retries)
	if err != nil {
		return a, err
	}
	v, err := s.extractor().ExtractStructured(raw, ai.ShapeObject)
	if err != nil {
		return a, err
	}
	r, ok := applyEvaluation(a, v.(map[string]any))
	if !ok {
		return a, fmt.Errorf("op=usecase.evaluateOne: %w: non-numeric score", errInvalidOutput)
	}
	return r, nil
}

func (s EvaluationService) extractor() *ai.Extractor {
	if s.extract == nil {
		return ai.NewExtractor()
	}
	return s.extract
}

// applyEvaluation copies a model evaluation onto a. It reports false when the
// score is missing or not a number.
func applyEvaluation(a domain.Answer, m map[string]any) (domain.Answer, bool) {
	if m == nil {
		return a, false
	}
	score, ok := numberOf(m["score"])
	if !ok {
		return a, false
	}
	a.Score = domain.ClampScore(score)
	a.Feedback = stringOf(m["feedback"])
	if a.Feedback == "" {
		a.Feedback = defaultFeedback
	}
	a.Strengths = capItems(stringsOf(m["strengths"]), domain.MaxFeedbackItems)
	a.Improvements = capItems(stringsOf(m["improvements"]), domain.MaxFeedbackItems)
	return a, true
}

// alignQuestions returns the question for each answer, matched by ID.
func alignQuestions(questions []domain.Question, answers []domain.Answer) ([]domain.Question, error) {
	if len(answers) == 0 {
		return nil, fmt.Errorf("op=usecase.EvaluateAnswers: %w: no answers", domain.ErrInvalidArgument)
	}
	if len(questions) != len(answers) {
		return nil, fmt.Errorf("op=usecase.EvaluateAnswers: %w: %d questions for %d answers", domain.ErrInvalidArgument, len(questions), len(answers))
	}
	byID := make(map[string]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	out := make([]domain.Question, len(answers))
	for i, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok || a.QuestionID == "" {
			return nil, fmt.Errorf("op=usecase.EvaluateAnswers: %w: answer %d references unknown question %q", domain.ErrInvalidArgument, i, a.QuestionID)
		}
		out[i] = q
	}
	return out, nil
}

func answerText(a domain.Answer) string {
	if t := strings.TrimSpace(a.Text); t != "" {
		return textx.Truncate(t, answerRunes)
	}
	return "(no answer provided)"
}

func timeLimit(q domain.Question) int {
	if l := q.Difficulty.TimeLimit(); l > 0 {
		return l
	}
	return q.TimeLimitSeconds
}

const scoringGuide = `Score each answer from 1 to 10 for technical accuracy, completeness, clarity and use of examples.
1-3: incorrect or missing. 4-5: partially correct. 6-7: correct with gaps. 8-9: strong. 10: exceptional.
Give at most 3 strengths and at most 3 improvements.`

func batchPrompt(questions []domain.Question, answers []domain.Answer) string {
	var b strings.Builder
	b.WriteString("You are evaluating a full-stack developer technical interview.\n\n")
	for i, a := range answers {
		q := questions[i]
		fmt.Fprintf(&b, "Question %d (%s, time limit %ds): %s\n", i+1, q.Difficulty, timeLimit(q), q.Text)
		fmt.Fprintf(&b, "Answer %d (time spent %ds): %s\n\n", i+1, a.TimeSpentSeconds, answerText(a))
	}
	b.WriteString(scoringGuide)
	fmt.Fprintf(&b, `

Respond with ONLY a JSON object and no other text, containing exactly %d evaluations in the same order as the answers:
{"evaluations": [{"score": <number>, "feedback": "<text>", "strengths": ["..."], "improvements": ["..."]}]}`, len(answers))
	return b.String()
}

func singlePrompt(q domain.Question, a domain.Answer) string {
	var b strings.Builder
	b.WriteString("You are evaluating one answer from a full-stack developer technical interview.\n\n")
	fmt.Fprintf(&b, "Question (%s, time limit %ds): %s\n", q.Difficulty, timeLimit(q), q.Text)
	fmt.Fprintf(&b, "Answer (time spent %ds): %s\n\n", a.TimeSpentSeconds, answerText(a))
	b.WriteString(scoringGuide)
	b.WriteString(`

Respond with ONLY a JSON object and no other text:
{"score": <number>, "feedback": "<text>", "strengths": ["..."], "improvements": ["..."]}`)
	return b.String()
}
