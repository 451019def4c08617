// Package fallback produces deterministic, offline substitutes for every
// AI-backed operation: a curated question pool, a text-signal scoring
// heuristic, threshold-based feedback and a templated interview summary.
package fallback

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
)

//go:embed questions.yaml
var defaultPool []byte

type poolFile struct {
	Questions []struct {
		ID         string `yaml:"id"`
		Text       string `yaml:"text"`
		Difficulty string `yaml:"difficulty"`
		Category   string `yaml:"category"`
	} `yaml:"questions"`
}

// Engine holds the curated question pool. It is immutable after construction.
type Engine struct {
	pool map[domain.Difficulty][]domain.Question
}

// New builds an Engine from the embedded question pool.
func New() (*Engine, error) {
	return NewFromYAML(defaultPool)
}

// MustNew is New for process start-up, where a broken embedded pool is a programming error.
func MustNew() *Engine {
	e, err := New()
	if err != nil {
		panic(err)
	}
	return e
}

// NewFromYAML builds an Engine from a YAML document with a top-level "questions" list.
func NewFromYAML(b []byte) (*Engine, error) {
	var f poolFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("op=fallback.NewFromYAML: parse pool: %w", err)
	}
	e := &Engine{pool: make(map[domain.Difficulty][]domain.Question, len(domain.Difficulties))}
	seen := make(map[string]bool, len(f.Questions))
	for i, q := range f.Questions {
		d, ok := domain.ParseDifficulty(q.Difficulty)
		if !ok {
			return nil, fmt.Errorf("op=fallback.NewFromYAML: question %d: unknown difficulty %q", i, q.Difficulty)
		}
		text := strings.TrimSpace(q.Text)
		if q.ID == "" || text == "" {
			return nil, fmt.Errorf("op=fallback.NewFromYAML: question %d: id and text are required", i)
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("op=fallback.NewFromYAML: duplicate id %q", q.ID)
		}
		seen[q.ID] = true
		e.pool[d] = append(e.pool[d], domain.Question{
			ID:               q.ID,
			Text:             text,
			Difficulty:       d,
			TimeLimitSeconds: d.TimeLimit(),
			Category:         q.Category,
		})
	}
	for _, d := range domain.Difficulties {
		if len(e.pool[d]) < domain.QuestionsPerDifficulty {
			return nil, fmt.Errorf("op=fallback.NewFromYAML: tier %s has %d questions, need %d",
				d, len(e.pool[d]), domain.QuestionsPerDifficulty)
		}
	}
	return e, nil
}

// Pool returns a copy of the questions in tier d.
func (e *Engine) Pool(d domain.Difficulty) []domain.Question {
	return append([]domain.Question(nil), e.pool[d]...)
}

// Questions draws QuestionsPerDifficulty random questions from each tier,
// ordered easy, medium, hard. A nil rng uses the global source.
func (e *Engine) Questions(rng *rand.Rand) []domain.Question {
	out := make([]domain.Question, 0, domain.QuestionSetSize)
	for _, d := range domain.Difficulties {
		out = append(out, e.Draw(rng, d, domain.QuestionsPerDifficulty, nil)...)
	}
	return out
}

// Draw returns up to n random questions of tier d whose text is not in used.
// Keys of used are NormalizeText'd question texts.
func (e *Engine) Draw(rng *rand.Rand, d domain.Difficulty, n int, used map[string]bool) []domain.Question {
	if n <= 0 {
		return nil
	}
	candidates := make([]domain.Question, 0, len(e.pool[d]))
	for _, q := range e.pool[d] {
		if !used[NormalizeText(q.Text)] {
			candidates = append(candidates, q)
		}
	}
	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	if n < len(candidates) {
		candidates = candidates[:n]
	}
	return candidates
}

// NormalizeText is the key used to detect duplicate questions.
func NormalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
