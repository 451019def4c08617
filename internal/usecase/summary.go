package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	obs "github.com/ParthivReddyY/ai-interviewer/internal/adapter/observability"
	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
	intobs "github.com/ParthivReddyY/ai-interviewer/internal/observability"
	"github.com/ParthivReddyY/ai-interviewer/internal/service/fallback"
	"github.com/ParthivReddyY/ai-interviewer/pkg/textx"
)

const summaryAnswerRunes = 300

// SummaryService writes the narrative interview summary.
type SummaryService struct {
	LLM     domain.ResilientCompleter
	Retries int
}

// NewSummaryService constructs a SummaryService.
func NewSummaryService(llm domain.ResilientCompleter, retries int) SummaryService {
	return SummaryService{LLM: llm, Retries: retries}
}

// GenerateSummary returns a markdown summary of the evaluated answers. The
// template is used without an AI call when the scores themselves came from the
// heuristic or finalScore is 0. It never fails.
func (s SummaryService) GenerateSummary(ctx context.Context, answers []domain.Answer, finalScore float64) string {
	ctx, lg := intobs.WithOperation(ctx, "usecase.GenerateSummary")
	unavailable := anyUnavailable(answers)

	if finalScore == 0 || allHeuristic(answers) {
		lg.Info("skipping AI summary for heuristic results")
		obs.ObserveFallback("summary", "skipped")
		return fallback.Summary(answers, finalScore, unavailable)
	}

	raw, err := complete(ctx, s.LLM, summaryPrompt(answers, finalScore), s.Retries)
	text := textx.StripFences(raw)
	if err == nil && text == "" {
		err = fmt.Errorf("op=usecase.GenerateSummary: %w: empty summary", errInvalidOutput)
	}
	if err != nil {
		cause := fallbackCause(err)
		lg.Warn("AI summary failed, using template", slog.String("cause", cause), slog.Any("error", err))
		obs.ObserveFallback("summary", cause)
		return fallback.Summary(answers, finalScore, unavailable || highDemand(err) || s.LLM == nil)
	}
	if unavailable {
		text += "\n\n" + fallback.UnavailableNote
	}
	return text
}

// allHeuristic reports whether no answer carries model feedback. Answers with
// empty feedback count as heuristic, so an unevaluated set skips the AI call.
func allHeuristic(answers []domain.Answer) bool {
	for _, a := range answers {
		fb := strings.TrimSpace(a.Feedback)
		if fb != "" && !fallback.IsHeuristicFeedback(fb) {
			return false
		}
	}
	return true
}

func anyUnavailable(answers []domain.Answer) bool {
	for _, a := range answers {
		if fallback.IsUnavailableFeedback(a.Feedback) {
			return true
		}
	}
	return false
}

func summaryPrompt(answers []domain.Answer, finalScore float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a concise summary of a full-stack developer technical interview. Final score: %.1f/10.\n\n", finalScore)
	for i, a := range answers {
		fmt.Fprintf(&b, "Answer %d: score %.1f/10, time spent %ds\n", i+1, a.Score, a.TimeSpentSeconds)
		fmt.Fprintf(&b, "Response: %s\n", textx.Truncate(answerText(a), summaryAnswerRunes))
		if a.Feedback != "" {
			fmt.Fprintf(&b, "Feedback: %s\n", a.Feedback)
		}
		b.WriteString("\n")
	}
	b.WriteString(`Write 150-250 words of plain markdown with these sections:
**Overall Assessment**, **Key Strengths**, **Areas for Improvement**, **Recommendation**.
Be specific and professional. Do not wrap the text in code fences or JSON.`)
	return b.String()
}
