package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ParthivReddyY/ai-interviewer/internal/adapter/ai"
	obs "github.com/ParthivReddyY/ai-interviewer/internal/adapter/observability"
	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
	intobs "github.com/ParthivReddyY/ai-interviewer/internal/observability"
	"github.com/ParthivReddyY/ai-interviewer/internal/service/resumeparse"
	"github.com/ParthivReddyY/ai-interviewer/pkg/textx"
)

// Confidence assigned when the model did not produce the profile.
const (
	ruleOnlyConfidence    = 0.8
	aiFailedConfidence    = 0.6
	emptyConfidence       = 0.2
	missingAIConfidence   = 0.5
	minConfidence         = 0.1
	resumePromptRunes     = 6000
	minPhoneDigits        = 7
	resumeCacheKeyVersion = "v1"
)

// ResumeService turns raw resume text into a ResumeProfile.
type ResumeService struct {
	LLM     domain.ResilientCompleter
	Parser  *resumeparse.Parser
	Cache   domain.ResumeCache
	Retries int
	// RequireDetail makes the rule-based pass also need skills or experience
	// before the AI call is skipped.
	RequireDetail bool

	extract  *ai.Extractor
	validate *validator.Validate
}

// NewResumeService constructs a ResumeService. llm and cache may be nil.
func NewResumeService(llm domain.ResilientCompleter, parser *resumeparse.Parser, cache domain.ResumeCache, retries int, requireDetail bool) ResumeService {
	if parser == nil {
		parser = resumeparse.New()
	}
	return ResumeService{
		LLM:           llm,
		Parser:        parser,
		Cache:         cache,
		Retries:       retries,
		RequireDetail: requireDetail,
		extract:       ai.NewExtractor(),
		validate:      validator.New(),
	}
}

// ParseResumeText extracts a profile from raw. It never fails: without the
// model it returns the rule-based profile with a lower confidence.
func (s ResumeService) ParseResumeText(ctx context.Context, raw string) domain.ResumeProfile {
	ctx, lg := intobs.WithOperation(ctx, "usecase.ParseResumeText")
	text := textx.SanitizeText(raw)
	if text == "" {
		return finishProfile(domain.ResumeProfile{}, domain.ParsingMethodFallback, emptyConfidence)
	}

	key := resumeCacheKey(text)
	if p, ok := s.cached(ctx, key); ok {
		lg.Debug("resume profile served from cache")
		return p
	}

	rb := s.Parser.Parse(text)
	if resumeparse.Sufficient(rb, s.RequireDetail) {
		p := finishProfile(rb, domain.ParsingMethodFallback, ruleOnlyConfidence)
		lg.Info("rule-based resume parse sufficient, skipping AI")
		s.store(ctx, key, p)
		return p
	}

	aiProf, conf, err := s.parseWithAI(ctx, text)
	if err != nil {
		cause := fallbackCause(err)
		lg.Warn("AI resume parse failed, using rule-based profile", slog.String("cause", cause), slog.Any("error", err))
		obs.ObserveFallback("resume", cause)
		c := aiFailedConfidence
		if rb.IsEmpty() {
			c = emptyConfidence
		}
		return finishProfile(rb, domain.ParsingMethodFallback, c)
	}

	method := domain.ParsingMethodHybrid
	if rb.IsEmpty() {
		method = domain.ParsingMethodAI
	}
	p := finishProfile(mergeProfiles(aiProf, rb), method, conf)
	s.store(ctx, key, p)
	return p
}

func (s ResumeService) parseWithAI(ctx context.Context, text string) (domain.ResumeProfile, float64, error) {
	raw, err := complete(ctx, s.LLM, resumePrompt(text), s.Retries)
	if err != nil {
		return domain.ResumeProfile{}, 0, err
	}
	ex := s.extract
	if ex == nil {
		ex = ai.NewExtractor()
	}
	v, err := ex.ExtractStructured(raw, ai.ShapeObject)
	if err != nil {
		return domain.ResumeProfile{}, 0, err
	}
	m := v.(map[string]any)
	p := s.profileFromAI(m)
	if p.IsEmpty() {
		return domain.ResumeProfile{}, 0, fmt.Errorf("op=usecase.parseWithAI: %w: no fields", errInvalidOutput)
	}
	return p, aiConfidence(m["confidence"]), nil
}

// profileFromAI reads the model object without trusting its types. Values that
// fail basic validation are dropped.
func (s ResumeService) profileFromAI(m map[string]any) domain.ResumeProfile {
	p := domain.ResumeProfile{
		Name:           textx.CollapseSpaces(stringOf(firstOf(m, "name", "fullName"))),
		Email:          strings.ToLower(stringOf(m["email"])),
		Phone:          stringOf(firstOf(m, "phone", "phoneNumber")),
		Location:       stringOf(firstOf(m, "location", "address")),
		LinkedIn:       stringOf(firstOf(m, "linkedIn", "linkedin")),
		GitHub:         stringOf(firstOf(m, "github", "gitHub")),
		Website:        stringOf(firstOf(m, "website", "portfolio")),
		JobTitle:       stringOf(firstOf(m, "jobTitle", "title", "currentRole")),
		Summary:        stringOf(m["summary"]),
		Skills:         stringsOf(m["skills"]),
		Experience:     stringOf(m["experience"]),
		Education:      stringOf(m["education"]),
		Certifications: stringsOf(m["certifications"]),
		Languages:      stringsOf(m["languages"]),
		Projects:       stringsOf(m["projects"]),
	}
	v := s.validate
	if v == nil {
		v = validator.New()
	}
	if p.Email != "" && v.Var(p.Email, "email") != nil {
		p.Email = ""
	}
	if p.Phone != "" && countDigits(p.Phone) < minPhoneDigits {
		p.Phone = ""
	}
	return p
}

func (s ResumeService) cached(ctx context.Context, key string) (domain.ResumeProfile, bool) {
	if s.Cache == nil {
		return domain.ResumeProfile{}, false
	}
	p, ok, err := s.Cache.Get(ctx, key)
	if err != nil {
		intobs.LoggerFromContext(ctx).Warn("resume cache get failed", slog.Any("error", err))
		return domain.ResumeProfile{}, false
	}
	if ok {
		p.RecomputeMissing()
	}
	return p, ok
}

func (s ResumeService) store(ctx context.Context, key string, p domain.ResumeProfile) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Set(ctx, key, p); err != nil {
		intobs.LoggerFromContext(ctx).Warn("resume cache set failed", slog.Any("error", err))
	}
}

// mergeProfiles keeps every non-empty field of primary and fills the rest from secondary.
func mergeProfiles(primary, secondary domain.ResumeProfile) domain.ResumeProfile {
	str := func(a, b string) string {
		if strings.TrimSpace(a) != "" {
			return a
		}
		return b
	}
	list := func(a, b []string) []string {
		if len(a) > 0 {
			return a
		}
		return b
	}
	return domain.ResumeProfile{
		Name:           str(primary.Name, secondary.Name),
		Email:          str(primary.Email, secondary.Email),
		Phone:          str(primary.Phone, secondary.Phone),
		Location:       str(primary.Location, secondary.Location),
		LinkedIn:       str(primary.LinkedIn, secondary.LinkedIn),
		GitHub:         str(primary.GitHub, secondary.GitHub),
		Website:        str(primary.Website, secondary.Website),
		JobTitle:       str(primary.JobTitle, secondary.JobTitle),
		Summary:        str(primary.Summary, secondary.Summary),
		Skills:         list(primary.Skills, secondary.Skills),
		Experience:     str(primary.Experience, secondary.Experience),
		Education:      str(primary.Education, secondary.Education),
		Certifications: list(primary.Certifications, secondary.Certifications),
		Languages:      list(primary.Languages, secondary.Languages),
		Projects:       list(primary.Projects, secondary.Projects),
	}
}

func finishProfile(p domain.ResumeProfile, method domain.ParsingMethod, confidence float64) domain.ResumeProfile {
	p.ParsingMethod = method
	p.Confidence = confidence
	p.RecomputeMissing()
	obs.ObserveResumeParse(string(method))
	return p
}

// aiConfidence clamps the model's self-reported confidence to [0.1,1].
// Percentages such as 85 are read as 0.85.
func aiConfidence(v any) float64 {
	c, ok := numberOf(v)
	if !ok || math.IsNaN(c) {
		return missingAIConfidence
	}
	if c > 1 && c <= 100 {
		c /= 100
	}
	return math.Max(minConfidence, math.Min(1, c))
}

func resumeCacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return resumeCacheKeyVersion + ":" + hex.EncodeToString(h[:])
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func resumePrompt(text string) string {
	return `Extract structured information from the resume below.

Respond with ONLY a JSON object and no other text, using these keys (use null for anything not present):
{"name": string, "email": string, "phone": string, "location": string, "linkedIn": string, "github": string,
 "website": string, "jobTitle": string, "summary": string, "skills": [string], "experience": string,
 "education": string, "certifications": [string], "languages": [string], "projects": [string],
 "confidence": number between 0 and 1}

Resume:
` + textx.Truncate(text, resumePromptRunes)
}
