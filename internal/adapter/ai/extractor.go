package ai

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/ParthivReddyY/ai-interviewer/pkg/textx"
)

// Shape is the top-level JSON kind a caller expects from model output.
type Shape string

const (
	ShapeObject Shape = "object"
	ShapeArray  Shape = "array"
)

func (s Shape) open() byte {
	if s == ShapeArray {
		return '['
	}
	return '{'
}

func (s Shape) close() byte {
	if s == ShapeArray {
		return ']'
	}
	return '}'
}

// maxCandidates bounds how many opening brackets are tried per text.
const maxCandidates = 32

var fenceRe = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\r?\n?(.*?)```")

var smartQuotes = strings.NewReplacer(
	"“", `"`, "”", `"`,
	"‘", "'", "’", "'",
)

// Extractor recovers structured JSON values from free-form model text.
type Extractor struct{}

// NewExtractor creates a new response extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractStructured returns the first well-formed value of the requested shape
// found in raw: a map[string]any for ShapeObject or a []any for ShapeArray.
// Markdown fences and surrounding prose are ignored; trailing commas, bare keys
// and single-quoted strings are repaired. Anything else is an *ExtractionError.
func (e *Extractor) ExtractStructured(raw string, shape Shape) (any, error) {
	if shape != ShapeObject && shape != ShapeArray {
		return nil, &ExtractionError{Shape: shape, Reason: "unsupported shape"}
	}
	if strings.TrimSpace(raw) == "" {
		return nil, &ExtractionError{Shape: shape, Reason: "empty response"}
	}

	found := false
	for _, text := range candidateTexts(raw) {
		v, sawSpan := extractFrom(text, shape)
		if v != nil {
			return v, nil
		}
		found = found || sawSpan
	}

	reason := "no balanced " + string(shape) + " found"
	if found {
		reason = "malformed " + string(shape) + " could not be repaired"
	} else if looksLikeRefusal(raw) {
		reason = "model refused to answer"
	}
	return nil, &ExtractionError{Shape: shape, Reason: reason, Snippet: snippet(raw)}
}

// ExtractInto extracts a value of the requested shape and decodes it into v.
func (e *Extractor) ExtractInto(raw string, shape Shape, v any) error {
	val, err := e.ExtractStructured(raw, shape)
	if err != nil {
		return err
	}
	b, err := json.Marshal(val)
	if err != nil {
		return &ExtractionError{Shape: shape, Reason: err.Error()}
	}
	if err := json.Unmarshal(b, v); err != nil {
		return &ExtractionError{Shape: shape, Reason: "decode: " + err.Error(), Snippet: snippet(raw)}
	}
	return nil
}

// candidateTexts yields the contents of fenced blocks first, then the whole text.
func candidateTexts(raw string) []string {
	raw = smartQuotes.Replace(raw)
	var out []string
	for _, m := range fenceRe.FindAllStringSubmatch(raw, -1) {
		if inner := strings.TrimSpace(m[1]); inner != "" {
			out = append(out, inner)
		}
	}
	return append(out, raw)
}

// extractFrom tries each opening bracket of the shape in order and returns the
// first span that decodes, strictly or after repair.
func extractFrom(text string, shape Shape) (any, bool) {
	sawSpan := false
	from := 0
	for tries := 0; tries < maxCandidates; tries++ {
		idx := strings.IndexByte(text[from:], shape.open())
		if idx < 0 {
			break
		}
		start := from + idx
		end, ok := balancedEnd(text, start, shape.open(), shape.close())
		if ok {
			sawSpan = true
			span := text[start : end+1]
			if v, ok := decode(span, shape); ok {
				return v, true
			}
			if v, ok := decode(repairJSON(span), shape); ok {
				return v, true
			}
		}
		from = start + 1
	}
	return nil, sawSpan
}

// balancedEnd returns the index of the bracket closing the one at start,
// ignoring brackets inside quoted strings.
func balancedEnd(s string, start int, openB, closeB byte) (int, bool) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\'':
			end, closed := scanString(s, i, c)
			if !closed {
				return 0, false
			}
			i = end
		case openB:
			depth++
		case closeB:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func decode(span string, shape Shape) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(span), &v); err != nil {
		return nil, false
	}
	switch v.(type) {
	case map[string]any:
		return v, shape == ShapeObject
	case []any:
		return v, shape == ShapeArray
	}
	return nil, false
}

// scanString returns the index of the quote closing the string opened at i.
func scanString(s string, i int, quote byte) (int, bool) {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j, true
		}
	}
	return len(s) - 1, false
}

// repairJSON fixes the syntax slips models commonly make: trailing commas,
// unquoted keys, single-quoted strings, raw newlines in strings and
// Python-style literals. String contents are never rewritten otherwise.
func repairJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)
	n := len(s)
	for i := 0; i < n; i++ {
		c := s[i]
		switch {
		case c == '"':
			end, closed := scanString(s, i, '"')
			if !closed {
				b.WriteString(s[i:])
				return b.String()
			}
			b.WriteString(escapeControl(s[i : end+1]))
			i = end
		case c == '\'':
			end, closed := scanString(s, i, '\'')
			if !closed {
				b.WriteString(s[i:])
				return b.String()
			}
			b.WriteString(escapeControl(requote(s[i+1 : end])))
			i = end
		case c == ',':
			k := skipSpace(s, i+1)
			if k < n && (s[k] == '}' || s[k] == ']') {
				continue
			}
			b.WriteByte(c)
		case isIdentStart(c):
			j := i
			for j < n && isIdent(s[j]) {
				j++
			}
			word := s[i:j]
			if k := skipSpace(s, j); k < n && s[k] == ':' {
				b.WriteString(`"` + word + `"`)
			} else {
				b.WriteString(literal(word))
			}
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func requote(inner string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		switch {
		case c == '\\' && i+1 < len(inner):
			if inner[i+1] == '\'' {
				b.WriteByte('\'')
			} else {
				b.WriteByte(c)
				b.WriteByte(inner[i+1])
			}
			i++
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func escapeControl(quoted string) string {
	if !strings.ContainsAny(quoted, "\n\r\t") {
		return quoted
	}
	r := strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`)
	return r.Replace(quoted)
}

func literal(word string) string {
	switch word {
	case "True":
		return "true"
	case "False":
		return "false"
	case "None", "undefined", "NaN":
		return "null"
	}
	return word
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\n' || s[i] == '\r' || s[i] == '\t') {
		i++
	}
	return i
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdent(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

var refusalIndicators = []string{
	"i'm sorry", "i am sorry", "i cannot", "i can't", "i'm unable", "i am unable",
	"i apologize", "i'm afraid", "i don't have access", "as an ai",
}

// looksLikeRefusal reports whether text reads like the model declined the request.
func looksLikeRefusal(text string) bool {
	lower := strings.ToLower(text)
	for _, indicator := range refusalIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

func snippet(s string) string {
	const limit = 200
	return textx.Truncate(strings.TrimSpace(s), limit)
}
