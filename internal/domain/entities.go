package domain

import (
	"context"
	"errors"
	"math"
	"strings"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrUpstreamRateLimit   = errors.New("upstream rate limit")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamTimeout     = errors.New("upstream timeout")
	ErrExtraction          = errors.New("extraction failed")
	ErrInternal            = errors.New("internal error")
)

// Context is an alias to context.Context to avoid importing context everywhere in ports.
type Context = context.Context

//go:generate mockery --name=Completer --with-expecter --filename=completer_mock.go
//go:generate mockery --name=ResilientCompleter --with-expecter --filename=resilient_completer_mock.go
//go:generate mockery --name=ResumeCache --with-expecter --filename=resume_cache_mock.go

// Difficulty is the tier of an interview question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the tiers in the order a question set is presented.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

const (
	// QuestionsPerDifficulty is the fixed number of questions per tier in a set.
	QuestionsPerDifficulty = 2
	// QuestionSetSize is the total number of questions in a generated set.
	QuestionSetSize = QuestionsPerDifficulty * 3
)

// ParseDifficulty normalizes s into a Difficulty.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy, true
	case DifficultyMedium:
		return DifficultyMedium, true
	case DifficultyHard:
		return DifficultyHard, true
	}
	return "", false
}

// TimeLimit returns the canonical answer time in seconds for the tier, or 0 when unknown.
func (d Difficulty) TimeLimit() int {
	switch d {
	case DifficultyEasy:
		return 20
	case DifficultyMedium:
		return 60
	case DifficultyHard:
		return 120
	}
	return 0
}

// Question is a single interview question.
// Invariant: TimeLimitSeconds == Difficulty.TimeLimit().
type Question struct {
	ID               string     `json:"id" validate:"required"`
	Text             string     `json:"text" validate:"required"`
	Difficulty       Difficulty `json:"difficulty" validate:"required,oneof=easy medium hard"`
	TimeLimitSeconds int        `json:"timeLimitSeconds" validate:"gte=0"`
	Category         string     `json:"category,omitempty"`
}

// Answer is a candidate answer and, once evaluated, its score and feedback.
// Score is 0 until an evaluation step has completed.
type Answer struct {
	QuestionID       string   `json:"questionId" validate:"required"`
	Text             string   `json:"text"`
	TimeSpentSeconds int      `json:"timeSpentSeconds" validate:"gte=0"`
	Score            float64  `json:"score"`
	Feedback         string   `json:"feedback"`
	Strengths        []string `json:"strengths"`
	Improvements     []string `json:"improvements"`
}

// MaxFeedbackItems bounds Strengths and Improvements.
const MaxFeedbackItems = 3

// EvaluationResult is the outcome of evaluating a full answer set.
// Invariant: OverallScore is the mean of PerAnswer scores rounded to two decimals.
type EvaluationResult struct {
	OverallScore float64  `json:"overallScore"`
	PerAnswer    []Answer `json:"perAnswer"`
}

// MeanScore returns the arithmetic mean of the answers' scores rounded to two decimals.
func MeanScore(answers []Answer) float64 {
	if len(answers) == 0 {
		return 0
	}
	var sum float64
	for _, a := range answers {
		sum += a.Score
	}
	return math.Round(sum/float64(len(answers))*100) / 100
}

// ClampScore bounds an evaluation score to [1,10].
func ClampScore(s float64) float64 {
	if math.IsNaN(s) {
		return 1
	}
	return math.Max(1, math.Min(10, s))
}

// QuickEvaluation is the low-latency single-answer evaluation.
type QuickEvaluation struct {
	Score        float64  `json:"score"`
	Feedback     string   `json:"feedback"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// ParsingMethod records which path produced a ResumeProfile.
type ParsingMethod string

const (
	ParsingMethodAI       ParsingMethod = "ai"
	ParsingMethodFallback ParsingMethod = "fallback"
	ParsingMethodHybrid   ParsingMethod = "hybrid"
)

// Resume field names used in MissingFields.
const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldLocation   = "location"
	FieldSkills     = "skills"
	FieldExperience = "experience"
	FieldEducation  = "education"
)

var (
	RequiredResumeFields = []string{FieldName, FieldEmail, FieldPhone}
	OptionalResumeFields = []string{FieldLocation, FieldSkills, FieldExperience, FieldEducation}
)

// ResumeProfile is the structured view of a resume.
type ResumeProfile struct {
	Name           string        `json:"name,omitempty"`
	Email          string        `json:"email,omitempty"`
	Phone          string        `json:"phone,omitempty"`
	Location       string        `json:"location,omitempty"`
	LinkedIn       string        `json:"linkedIn,omitempty"`
	GitHub         string        `json:"github,omitempty"`
	Website        string        `json:"website,omitempty"`
	JobTitle       string        `json:"jobTitle,omitempty"`
	Summary        string        `json:"summary,omitempty"`
	Skills         []string      `json:"skills,omitempty"`
	Experience     string        `json:"experience,omitempty"`
	Education      string        `json:"education,omitempty"`
	Certifications []string      `json:"certifications,omitempty"`
	Languages      []string      `json:"languages,omitempty"`
	Projects       []string      `json:"projects,omitempty"`
	ParsingMethod  ParsingMethod `json:"parsingMethod"`
	Confidence     float64       `json:"confidence"`
	MissingFields  []string      `json:"missingFields"`
}

// HasField reports whether the named required/optional field is non-empty.
func (p ResumeProfile) HasField(field string) bool {
	switch field {
	case FieldName:
		return strings.TrimSpace(p.Name) != ""
	case FieldEmail:
		return strings.TrimSpace(p.Email) != ""
	case FieldPhone:
		return strings.TrimSpace(p.Phone) != ""
	case FieldLocation:
		return strings.TrimSpace(p.Location) != ""
	case FieldSkills:
		return len(p.Skills) > 0
	case FieldExperience:
		return strings.TrimSpace(p.Experience) != ""
	case FieldEducation:
		return strings.TrimSpace(p.Education) != ""
	}
	return false
}

// RecomputeMissing resets MissingFields to the required and optional fields that are empty.
func (p *ResumeProfile) RecomputeMissing() {
	missing := make([]string, 0, len(RequiredResumeFields)+len(OptionalResumeFields))
	for _, f := range RequiredResumeFields {
		if !p.HasField(f) {
			missing = append(missing, f)
		}
	}
	for _, f := range OptionalResumeFields {
		if !p.HasField(f) {
			missing = append(missing, f)
		}
	}
	p.MissingFields = missing
}

// IsEmpty reports whether no profile field carries data.
func (p ResumeProfile) IsEmpty() bool {
	for _, f := range RequiredResumeFields {
		if p.HasField(f) {
			return false
		}
	}
	for _, f := range OptionalResumeFields {
		if p.HasField(f) {
			return false
		}
	}
	return p.LinkedIn == "" && p.GitHub == "" && p.Website == "" && p.JobTitle == "" &&
		p.Summary == "" && len(p.Certifications) == 0 && len(p.Languages) == 0 && len(p.Projects) == 0
}

// Ports

// Completer issues a single text-generation request. Implementations never retry.
type Completer interface {
	Complete(ctx Context, prompt string) (string, error)
}

// ResilientCompleter wraps completions with retry and credential failover.
type ResilientCompleter interface {
	CompleteWithResilience(ctx Context, prompt string, maxRetriesPerCredential int) (string, error)
}

// ResumeCache stores parsed profiles keyed by a digest of the resume text.
type ResumeCache interface {
	Get(ctx Context, key string) (ResumeProfile, bool, error)
	Set(ctx Context, key string, p ResumeProfile) error
}
