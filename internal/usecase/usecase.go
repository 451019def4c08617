// Package usecase contains the AI-backed interview generators. Every generator
// degrades to the fallback engine instead of returning service errors.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
)

// Fallback causes recorded in metrics and logs.
const (
	causeNoClient   = "no_client"
	causeHighDemand = "high_demand"
	causeExtraction = "extraction"
	causeInvalid    = "invalid_output"
	causeUpstream   = "upstream_error"
)

var (
	errNoClient      = fmt.Errorf("%w: no completion client configured", domain.ErrUpstreamUnavailable)
	errInvalidOutput = errors.New("invalid model output")
)

// complete calls llm with the given attempt budget. A nil llm is reported as unavailable.
func complete(ctx context.Context, llm domain.ResilientCompleter, prompt string, retries int) (string, error) {
	if llm == nil {
		return "", errNoClient
	}
	return llm.CompleteWithResilience(ctx, prompt, retries)
}

// highDemand reports whether err means the service was exhausted by rate
// limits or unavailability, as opposed to bad output.
func highDemand(err error) bool {
	return errors.Is(err, domain.ErrUpstreamRateLimit)
}

func fallbackCause(err error) string {
	switch {
	case errors.Is(err, errNoClient):
		return causeNoClient
	case highDemand(err):
		return causeHighDemand
	case errors.Is(err, domain.ErrExtraction):
		return causeExtraction
	case errors.Is(err, errInvalidOutput):
		return causeInvalid
	}
	return causeUpstream
}

// numberOf reads a model-provided number. Numeric strings such as "7", "7.5"
// and "7/10" are accepted.
func numberOf(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		if i := strings.IndexByte(s, '/'); i > 0 {
			s = strings.TrimSpace(s[:i])
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// emptyValues are placeholder strings models emit instead of omitting a field.
var emptyValues = map[string]bool{
	"null": true, "none": true, "n/a": true, "na": true, "unknown": true, "not provided": true, "not specified": true, "-": true,
}

// preferredKeys orders the fields of a flattened object.
var preferredKeys = []string{
	"title", "role", "position", "degree", "field", "name",
	"company", "organization", "institution", "school", "university",
	"location", "duration", "dates", "years", "year", "description",
}

// stringOf flattens a model-provided value into a single line of text.
func stringOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s := strings.TrimSpace(t)
		if emptyValues[strings.ToLower(s)] {
			return ""
		}
		return s
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return ""
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := stringOf(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		return flattenObject(t)
	}
	return ""
}

func flattenObject(m map[string]any) string {
	seen := make(map[string]bool, len(m))
	parts := make([]string, 0, len(m))
	for _, k := range preferredKeys {
		if v, ok := m[k]; ok {
			seen[k] = true
			if s := stringOf(v); s != "" {
				parts = append(parts, s)
			}
		}
	}
	rest := make([]string, 0, len(m))
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		if s := stringOf(m[k]); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// stringsOf flattens a model-provided list. A plain string is split on commas
// and semicolons. Empty and duplicate items are dropped.
func stringsOf(v any) []string {
	var raw []string
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			raw = append(raw, stringOf(e))
		}
	case string:
		raw = strings.FieldsFunc(t, func(r rune) bool { return r == ',' || r == ';' || r == '\n' })
	default:
		if s := stringOf(v); s != "" {
			raw = []string{s}
		}
	}
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" || emptyValues[strings.ToLower(s)] || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		out = append(out, s)
	}
	return out
}

func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func capItems(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
