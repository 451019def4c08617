// Package resumeparse extracts a ResumeProfile from plain resume text with
// regular expressions and keyword lists. It needs no network and never fails.
package resumeparse

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
	"github.com/ParthivReddyY/ai-interviewer/pkg/textx"
)

const (
	maxSkills         = 20
	maxCertifications = 10
	maxLanguages      = 8
	maxProjects       = 10
	maxExperience     = 800
	maxSummary        = 300
	nameScanLines     = 5
)

var (
	emailRe    = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	usPhoneRe  = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	intlPhone  = regexp.MustCompile(`\+\d{1,3}[-.\s]?(?:\(?\d{1,4}\)?[-.\s]?){2,5}\d{2,4}\b`)
	linkedInRe = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/(?:in|pub)/[A-Za-z0-9_-]+/?`)
	gitHubRe   = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?github\.com/[A-Za-z0-9_.-]+`)
	websiteRe  = regexp.MustCompile(`(?i)\bhttps?://[^\s,;()<>]+|\bwww\.[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)*\.[A-Za-z]{2,}[^\s,;()<>]*`)
	nameLineRe = regexp.MustCompile(`^[A-Za-z][A-Za-z\s.'-]+$`)
	nameLabel  = regexp.MustCompile(`(?im)^\s*(?:full\s+)?name\s*:\s*([A-Za-z][A-Za-z .'-]{2,48})\s*$`)
	cityStRe   = regexp.MustCompile(`\b([A-Z][a-zA-Z]+(?:[ ][A-Z][a-zA-Z]+)*,[ ]?[A-Z]{2})\b(?:[ ]+\d{5})?`)
	degreeRe   = regexp.MustCompile(`(?m)^.*\b(?:Bachelor|Master|PhD|Ph\.D\.|B\.S\.|M\.S\.|B\.A\.|M\.A\.|MBA|B\.Tech|M\.Tech|B\.E\.|Associate(?:'s)? Degree)\b.*$`)
	schoolRe   = regexp.MustCompile(`(?m)^.*\b(?:University|College|Institute)\b.*$`)
	titleRe    = regexp.MustCompile(`(?i)\b((?:Senior |Junior |Lead |Principal |Staff )?(?:Software Engineer|Software Developer|Web Developer|Full[- ]Stack Developer|Frontend Developer|Front-End Developer|Backend Developer|Back-End Developer|DevOps Engineer|Data Scientist|Data Engineer|Product Manager|Software Architect|Site Reliability Engineer|Mobile Developer|QA Engineer))\b`)
	bulletRe   = regexp.MustCompile(`^\s*[-•*▪]\s*`)
	listSplit  = regexp.MustCompile(`[,\n|;•]`)
)

type section struct {
	field  string
	labels []string
}

var sections = []section{
	{"skills", []string{"skills", "technical skills", "core skills", "technologies", "programming languages", "tech stack", "proficient in"}},
	{"experience", []string{"experience", "work experience", "professional experience", "employment", "employment history", "work history"}},
	{"education", []string{"education", "academic background", "qualifications"}},
	{"summary", []string{"summary", "professional summary", "profile", "about", "about me", "overview", "objective", "career objective"}},
	{"certifications", []string{"certifications", "certification", "certificates", "licenses"}},
	{"languages", []string{"languages", "spoken languages"}},
	{"projects", []string{"projects", "personal projects", "key projects", "portfolio", "notable work"}},
	{"title", []string{"title", "position", "role", "current position", "current role"}},
	{"location", []string{"location", "address", "city", "based in"}},
}

// Parser is the rule-based resume pass.
type Parser struct {
	keywords []keyword
}

// New creates a Parser with the built-in technology keyword list.
func New() *Parser {
	return &Parser{keywords: compileKeywords(techKeywords)}
}

// Parse extracts every field it can recognize. ParsingMethod, Confidence and
// MissingFields are left for the caller to decide.
func (p *Parser) Parse(raw string) domain.ResumeProfile {
	text := textx.SanitizeText(raw)
	lines := nonEmptyLines(text)
	secs := splitSections(lines)

	prof := domain.ResumeProfile{
		Name:     extractName(text, lines),
		Email:    emailRe.FindString(text),
		Phone:    extractPhone(text),
		LinkedIn: withScheme(linkedInRe.FindString(text)),
		GitHub:   withScheme(gitHubRe.FindString(text)),
		Website:  extractWebsite(text),
	}

	prof.Location = firstLine(secs["location"])
	if prof.Location == "" {
		if m := cityStRe.FindStringSubmatch(text); m != nil {
			prof.Location = m[1]
		}
	}

	prof.JobTitle = firstLine(secs["title"])
	if prof.JobTitle == "" {
		if m := titleRe.FindStringSubmatch(text); m != nil {
			prof.JobTitle = m[1]
		}
	}

	prof.Summary = textx.Truncate(textx.CollapseSpaces(secs["summary"]), maxSummary)
	prof.Skills = p.extractSkills(text, secs["skills"])
	prof.Experience = extractExperience(text, secs["experience"])
	prof.Education = extractEducation(text, secs["education"])
	prof.Certifications = splitList(secs["certifications"], 4, 120, maxCertifications)
	prof.Languages = splitList(secs["languages"], 2, 20, maxLanguages)
	prof.Projects = extractProjects(secs["projects"])
	return prof
}

// Sufficient reports whether a rule-based profile is complete enough to skip
// the AI pass: name, email and phone, plus skills or experience when requireDetail is set.
func Sufficient(p domain.ResumeProfile, requireDetail bool) bool {
	for _, f := range domain.RequiredResumeFields {
		if !p.HasField(f) {
			return false
		}
	}
	if requireDetail {
		return p.HasField(domain.FieldSkills) || p.HasField(domain.FieldExperience)
	}
	return true
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// splitSections groups lines under the nearest preceding recognized header.
// "Header: value" lines start a section with an inline first value.
func splitSections(lines []string) map[string]string {
	out := make(map[string]string)
	current := ""
	for _, line := range lines {
		if field, rest, ok := matchHeader(line); ok {
			current = field
			if rest != "" {
				out[field] = appendLine(out[field], rest)
			}
			continue
		}
		if current != "" {
			out[current] = appendLine(out[current], line)
		}
	}
	return out
}

func matchHeader(line string) (field, rest string, ok bool) {
	label, value, hasColon := strings.Cut(line, ":")
	key := strings.ToLower(strings.TrimSpace(strings.Trim(label, "#*= ")))
	for _, s := range sections {
		for _, l := range s.labels {
			if key != l {
				continue
			}
			if hasColon {
				return s.field, strings.TrimSpace(value), true
			}
			return s.field, "", true
		}
	}
	return "", "", false
}

func appendLine(acc, line string) string {
	if acc == "" {
		return line
	}
	return acc + "\n" + line
}

func firstLine(s string) string {
	first, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(first)
}

func extractName(text string, lines []string) string {
	if m := nameLabel.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	for i := 0; i < len(lines) && i < nameScanLines; i++ {
		line := lines[i]
		n := len(strings.Fields(line))
		if n < 2 || n > 4 || len(line) <= 5 || len(line) >= 50 || !nameLineRe.MatchString(line) {
			continue
		}
		if _, _, isHeader := matchHeader(line); isHeader {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "resume") || strings.Contains(lower, "curriculum") || hasWord(lower, "cv") {
			continue
		}
		return line
	}
	return ""
}

func hasWord(s, w string) bool {
	for _, f := range strings.Fields(s) {
		if f == w {
			return true
		}
	}
	return false
}

func extractPhone(text string) string {
	for _, re := range []*regexp.Regexp{usPhoneRe, intlPhone} {
		for _, m := range re.FindAllString(text, -1) {
			if d := countDigits(m); d >= 10 && d <= 15 {
				return strings.TrimSpace(m)
			}
		}
	}
	return ""
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func extractWebsite(text string) string {
	for _, m := range websiteRe.FindAllString(text, -1) {
		lower := strings.ToLower(m)
		if strings.Contains(lower, "linkedin.com") || strings.Contains(lower, "github.com") {
			continue
		}
		return withScheme(strings.TrimRight(m, "."))
	}
	return ""
}

func withScheme(u string) string {
	if u == "" || strings.HasPrefix(strings.ToLower(u), "http") {
		return u
	}
	return "https://" + u
}

func extractExperience(text, sec string) string {
	if sec != "" {
		return textx.Truncate(sec, maxExperience)
	}
	var entries []string
	seen := map[string]bool{}
	for _, loc := range titleRe.FindAllStringIndex(text, -1) {
		start := loc[0]
		end := loc[1] + 200
		if end > len(text) {
			end = len(text)
		}
		entry := textx.CollapseSpaces(text[start:end])
		if len(entry) > 20 && !seen[entry] {
			seen[entry] = true
			entries = append(entries, entry)
		}
	}
	return textx.Truncate(strings.Join(entries, "\n\n"), maxExperience)
}

func extractEducation(text, sec string) string {
	if sec != "" {
		return sec
	}
	if m := degreeRe.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return strings.TrimSpace(schoolRe.FindString(text))
}

func extractProjects(sec string) []string {
	if sec == "" {
		return nil
	}
	var out []string
	seen := map[string]bool{}
	for _, line := range strings.Split(sec, "\n") {
		p := strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
		if len(p) <= 10 || len(p) >= 300 || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
		if len(out) == maxProjects {
			break
		}
	}
	return out
}

// splitList splits a section on list separators, keeping items whose length is within [minLen, maxLen).
func splitList(sec string, minLen, maxLen, limit int) []string {
	if sec == "" {
		return nil
	}
	var out []string
	seen := map[string]bool{}
	for _, item := range listSplit.Split(sec, -1) {
		item = strings.TrimSpace(bulletRe.ReplaceAllString(item, ""))
		key := strings.ToLower(item)
		if len(item) < minLen || len(item) >= maxLen || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out
}
