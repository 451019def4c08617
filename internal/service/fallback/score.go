package fallback

import (
	"math"
	"regexp"
	"strings"

	"github.com/ParthivReddyY/ai-interviewer/pkg/textx"
)

const baseScore = 5.0

var (
	fencedCodeRe  = regexp.MustCompile("```")
	codeKeywordRe = regexp.MustCompile("\\b(function|const|let|var|class|def|func|return|import|public|private|async|await)\\b|=>|`[^`\\n]+`")
	techTermRe    = regexp.MustCompile(`(?i)\b(api|database|component|state|props|async|await|promise|server|client|framework|library|algorithm|data structure|security|performance|optimization|design pattern|architecture|testing|deployment|scaling|monitoring|debugging|error handling|validation|authentication|authorization|http|rest|graphql|json|html|css|javascript|typescript|python|java|golang|react|vue|angular|node|express|django|spring|kubernetes|docker|aws|azure|gcp|git|ci/cd|devops|cache|caching|index|query|sql|nosql|microservice|microservices|load balancer|queue|concurrency|latency|throughput|complexity|recursion|hash|thread)\b`)
)

// Signals are the text features the heuristic scores on.
type Signals struct {
	Words        int
	FencedCode   bool
	CodeKeywords bool
	// TechTerms counts distinct technical vocabulary terms.
	TechTerms int
	// Timed is set when a time limit was known; TimeRatio is spent over limit.
	Timed     bool
	TimeRatio float64
}

// Analyze extracts scoring signals from an answer.
func Analyze(text string, timeSpentSeconds, timeLimitSeconds int) Signals {
	s := Signals{
		Words:        textx.WordCount(text),
		FencedCode:   fencedCodeRe.MatchString(text),
		CodeKeywords: codeKeywordRe.MatchString(text),
	}
	terms := make(map[string]struct{})
	for _, m := range techTermRe.FindAllString(text, -1) {
		terms[strings.ToLower(m)] = struct{}{}
	}
	s.TechTerms = len(terms)
	if timeLimitSeconds > 0 && timeSpentSeconds >= 0 {
		s.Timed = true
		s.TimeRatio = float64(timeSpentSeconds) / float64(timeLimitSeconds)
	}
	return s
}

// Score turns signals into a score in [1,10] rounded to the nearest 0.5.
func (s Signals) Score() float64 {
	score := baseScore
	switch {
	case s.Words >= 50:
		score += 2
	case s.Words >= 30:
		score += 1.5
	case s.Words >= 15:
		score++
	case s.Words < 5:
		score -= 2
	}

	if s.FencedCode {
		score += 1.5
	} else if s.CodeKeywords {
		score++
	}

	switch {
	case s.TechTerms >= 3:
		score++
	case s.TechTerms >= 1:
		score += 0.5
	}

	// The time bonus only applies to answers of at least five words.
	switch {
	case !s.Timed:
	case s.TimeRatio > 0.9:
		score -= 0.5
	case s.TimeRatio <= 0.5 && s.Words >= 5:
		score += 0.5
	}

	score = math.Round(score*2) / 2
	return math.Max(1, math.Min(10, score))
}

// Score is the heuristic score of an answer given its time budget.
func Score(text string, timeSpentSeconds, timeLimitSeconds int) float64 {
	return Analyze(text, timeSpentSeconds, timeLimitSeconds).Score()
}
