package resumeparse

import (
	"regexp"
	"strings"
)

var techKeywords = []string{
	// languages
	"JavaScript", "TypeScript", "Python", "Java", "C++", "C#", "Go", "Golang", "Rust", "Swift", "Kotlin",
	"PHP", "Ruby", "Scala", "Clojure", "Dart", "R", "MATLAB", "Objective-C", "SQL",
	// web
	"HTML", "CSS", "SCSS", "SASS", "Tailwind", "Bootstrap",
	"React", "Vue", "Angular", "Svelte", "jQuery", "Next.js", "Nuxt.js", "Gatsby",
	// backend
	"Node.js", "Express", "Django", "Flask", "FastAPI", "Spring", "ASP.NET", "Laravel",
	"Ruby on Rails", "Rails", "Gin", "Fiber",
	// data
	"MongoDB", "PostgreSQL", "MySQL", "Redis", "Elasticsearch", "Cassandra", "DynamoDB",
	"SQLite", "MariaDB", "Neo4j", "Firebase", "Supabase", "Kafka", "RabbitMQ",
	// cloud and tooling
	"AWS", "Azure", "GCP", "Google Cloud", "Heroku", "Vercel", "Netlify", "DigitalOcean",
	"Docker", "Kubernetes", "Jenkins", "GitLab", "GitHub Actions", "Terraform", "Ansible",
	"Git", "CI/CD", "REST", "GraphQL", "gRPC", "Microservices", "Webpack", "Vite",
	"Jest", "Cypress", "Selenium", "Postman", "Linux",
}

type keyword struct {
	name string
	re   *regexp.Regexp
}

// ambiguous keywords are also ordinary English words and only match with their exact casing.
var ambiguous = map[string]bool{
	"Go": true, "R": true, "Rust": true, "Swift": true, "Dart": true, "Express": true,
	"Spring": true, "Rails": true, "Gin": true, "Fiber": true, "Jest": true, "REST": true,
}

// compileKeywords builds boundary-aware matchers.
func compileKeywords(words []string) []keyword {
	out := make([]keyword, 0, len(words))
	for _, w := range words {
		flags := "(?i)"
		if ambiguous[w] {
			flags = ""
		}
		re := regexp.MustCompile(flags + `(?:^|[^A-Za-z0-9_+#.])` + regexp.QuoteMeta(w) + `(?:$|[^A-Za-z0-9_+#])`)
		out = append(out, keyword{name: w, re: re})
	}
	return out
}

func (p *Parser) extractSkills(text, sec string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(s string) {
		key := strings.ToLower(s)
		if seen[key] || len(out) >= maxSkills {
			return
		}
		seen[key] = true
		out = append(out, s)
	}
	for _, item := range splitList(sec, 2, 50, maxSkills) {
		add(item)
	}
	for _, k := range p.keywords {
		if k.re.MatchString(text) {
			add(k.name)
		}
	}
	return out
}
