package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ParthivReddyY/ai-interviewer/internal/adapter/ai"
	obs "github.com/ParthivReddyY/ai-interviewer/internal/adapter/observability"
	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
	intobs "github.com/ParthivReddyY/ai-interviewer/internal/observability"
	"github.com/ParthivReddyY/ai-interviewer/internal/service/fallback"
	"github.com/ParthivReddyY/ai-interviewer/pkg/textx"
)

const (
	resumeContextRunes = 1500
	minQuestionRunes   = 10
	maxPromptSkills    = 8
)

// QuestionService generates the interview question set.
type QuestionService struct {
	LLM     domain.ResilientCompleter
	Pool    *fallback.Engine
	Retries int

	extract *ai.Extractor
}

// NewQuestionService constructs a QuestionService. llm may be nil, in which
// case every set comes from the fallback pool.
func NewQuestionService(llm domain.ResilientCompleter, pool *fallback.Engine, retries int) QuestionService {
	return QuestionService{LLM: llm, Pool: pool, Retries: retries, extract: ai.NewExtractor()}
}

// GenerateQuestions returns exactly QuestionSetSize questions, QuestionsPerDifficulty
// per tier ordered easy, medium, hard. It never fails.
func (s QuestionService) GenerateQuestions(ctx context.Context, candidateName, resumeText string, profile *domain.ResumeProfile) []domain.Question {
	ctx, lg := intobs.WithOperation(ctx, "usecase.GenerateQuestions")

	raw, err := complete(ctx, s.LLM, questionPrompt(candidateName, resumeText, profile), s.Retries)
	if err != nil {
		return s.fallbackSet(lg, err)
	}
	items, err := s.extractor().ExtractStructured(raw, ai.ShapeArray)
	if err != nil {
		return s.fallbackSet(lg, err)
	}

	byTier, used := collectQuestions(items.([]any))
	if len(used) == 0 {
		return s.fallbackSet(lg, fmt.Errorf("op=usecase.GenerateQuestions: %w: no valid questions", errInvalidOutput))
	}

	out := make([]domain.Question, 0, domain.QuestionSetSize)
	padded := 0
	for _, d := range domain.Difficulties {
		tier := byTier[d]
		if need := domain.QuestionsPerDifficulty - len(tier); need > 0 {
			extra := s.Pool.Draw(nil, d, need, used)
			for _, q := range extra {
				used[fallback.NormalizeText(q.Text)] = true
			}
			tier = append(tier, extra...)
			padded += len(extra)
		}
		out = append(out, tier...)
	}
	if padded > 0 {
		lg.Warn("padded question set from fallback pool", slog.Int("padded", padded))
		obs.ObserveFallback("questions", "padded")
	}
	return out
}

func (s QuestionService) extractor() *ai.Extractor {
	if s.extract == nil {
		return ai.NewExtractor()
	}
	return s.extract
}

func (s QuestionService) fallbackSet(lg *slog.Logger, err error) []domain.Question {
	cause := fallbackCause(err)
	lg.Warn("using fallback question set", slog.String("cause", cause), slog.Any("error", err))
	obs.ObserveFallback("questions", cause)
	return s.Pool.Questions(nil)
}

// collectQuestions validates model items and keeps at most QuestionsPerDifficulty
// distinct questions per tier. used holds the normalized text of kept questions.
func collectQuestions(items []any) (map[domain.Difficulty][]domain.Question, map[string]bool) {
	byTier := make(map[domain.Difficulty][]domain.Question, len(domain.Difficulties))
	used := make(map[string]bool, domain.QuestionSetSize)
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		text := textx.CollapseSpaces(stringOf(firstOf(m, "text", "question")))
		d, ok := domain.ParseDifficulty(stringOf(m["difficulty"]))
		if !ok || len([]rune(text)) < minQuestionRunes {
			continue
		}
		key := fallback.NormalizeText(text)
		if used[key] || len(byTier[d]) >= domain.QuestionsPerDifficulty {
			continue
		}
		category := stringOf(firstOf(m, "category", "topic"))
		if category == "" {
			category = "General"
		}
		used[key] = true
		byTier[d] = append(byTier[d], domain.Question{
			ID:               uuid.NewString(),
			Text:             text,
			Difficulty:       d,
			TimeLimitSeconds: d.TimeLimit(),
			Category:         category,
		})
	}
	return byTier, used
}

func questionPrompt(candidateName, resumeText string, profile *domain.ResumeProfile) string {
	name := strings.TrimSpace(candidateName)
	if name == "" {
		name = "the candidate"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You are a senior technical interviewer preparing a full-stack developer interview for %s.\n", name)
	if profile != nil {
		if profile.JobTitle != "" {
			fmt.Fprintf(&b, "Current role: %s\n", profile.JobTitle)
		}
		if len(profile.Skills) > 0 {
			fmt.Fprintf(&b, "Key skills: %s\n", strings.Join(capItems(profile.Skills, maxPromptSkills), ", "))
		}
	}
	if rt := textx.SanitizeText(resumeText); rt != "" {
		fmt.Fprintf(&b, "Resume excerpt:\n%s\n", textx.Truncate(rt, resumeContextRunes))
	}
	b.WriteString(`
Generate exactly 6 interview questions: 2 easy, 2 medium and 2 hard.
Spread them across these topics: frontend, backend, database, system design, algorithms, security or other.
Tailor them to the candidate's background when one is given.

Respond with ONLY a JSON array and no other text. Each item must be:
{"text": "<question>", "difficulty": "easy" | "medium" | "hard", "category": "<topic>"}`)
	return b.String()
}
