package fallback

import (
	"strings"

	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
)

// Feedback markers. Summaries detect heuristic results by these prefixes.
const (
	UnavailablePrefix = "AI service temporarily unavailable. Score calculated using backup analysis: "
	BackupPrefix      = "Evaluated using backup analysis: "
)

// IsHeuristicFeedback reports whether feedback came from this package.
func IsHeuristicFeedback(feedback string) bool {
	return strings.HasPrefix(feedback, UnavailablePrefix) || strings.HasPrefix(feedback, BackupPrefix)
}

// IsUnavailableFeedback reports whether feedback says the AI service was unavailable.
func IsUnavailableFeedback(feedback string) bool {
	return strings.Contains(feedback, "AI service temporarily unavailable")
}

// Evaluate scores an answer with the heuristic and fills its feedback fields.
// serviceUnavailable selects the feedback prefix explaining why no AI result exists.
func Evaluate(q domain.Question, a domain.Answer, serviceUnavailable bool) domain.Answer {
	limit := q.Difficulty.TimeLimit()
	if limit == 0 {
		limit = q.TimeLimitSeconds
	}
	sig := Analyze(a.Text, a.TimeSpentSeconds, limit)
	score := sig.Score()

	prefix := BackupPrefix
	if serviceUnavailable {
		prefix = UnavailablePrefix
	}
	a.Score = score
	a.Feedback = prefix + scoreFeedback(score)
	a.Strengths = strengths(score, sig)
	a.Improvements = improvements(score, sig)
	return a
}

// EvaluateAll scores every answer against the question at the same index.
func EvaluateAll(questions []domain.Question, answers []domain.Answer, serviceUnavailable bool) domain.EvaluationResult {
	out := make([]domain.Answer, len(answers))
	for i, a := range answers {
		var q domain.Question
		if i < len(questions) {
			q = questions[i]
		}
		out[i] = Evaluate(q, a, serviceUnavailable)
	}
	return domain.EvaluationResult{OverallScore: domain.MeanScore(out), PerAnswer: out}
}

// Quick is Evaluate shaped as a QuickEvaluation.
func Quick(q domain.Question, a domain.Answer, serviceUnavailable bool) domain.QuickEvaluation {
	r := Evaluate(q, a, serviceUnavailable)
	return domain.QuickEvaluation{
		Score:        r.Score,
		Feedback:     r.Feedback,
		Strengths:    r.Strengths,
		Improvements: r.Improvements,
	}
}

func scoreFeedback(score float64) string {
	switch {
	case score >= 8.5:
		return "Excellent technical depth and understanding demonstrated."
	case score >= 7:
		return "Strong technical knowledge with good explanations."
	case score >= 5.5:
		return "Good understanding with room for more detail."
	case score >= 4:
		return "Basic understanding shown, needs more technical depth."
	}
	return "Consider providing more comprehensive technical explanations."
}

func strengths(score float64, sig Signals) []string {
	var out []string
	if score >= 7 {
		out = append(out, "Strong technical understanding")
	}
	if sig.FencedCode || sig.CodeKeywords {
		out = append(out, "Provided code examples")
	}
	if sig.TechTerms > 0 {
		out = append(out, "Used appropriate technical terminology")
	}
	if sig.Words >= 30 {
		out = append(out, "Comprehensive response")
	}
	if score >= 6 {
		out = append(out, "Good problem-solving approach")
	}
	if len(out) == 0 {
		return []string{"Answer provided"}
	}
	return capItems(out)
}

func improvements(score float64, sig Signals) []string {
	var out []string
	if score < 6 {
		out = append(out, "Add more technical detail and depth")
	}
	if sig.Words < 20 {
		out = append(out, "Expand explanations with more examples")
	}
	if !sig.FencedCode && !sig.CodeKeywords && score < 8 {
		out = append(out, "Consider including code examples")
	}
	if sig.TechTerms == 0 {
		out = append(out, "Use more specific technical terminology")
	}
	if score < 5 {
		out = append(out, "Focus on demonstrating practical knowledge")
	}
	if len(out) == 0 {
		return []string{"Continue building technical skills"}
	}
	return capItems(out)
}

func capItems(items []string) []string {
	if len(items) > domain.MaxFeedbackItems {
		return items[:domain.MaxFeedbackItems]
	}
	return items
}
