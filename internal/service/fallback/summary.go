package fallback

import (
	"fmt"
	"math"
	"strings"

	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
)

// UnavailableNote is appended to summaries produced while the AI service was unavailable.
const UnavailableNote = "*Note: AI service was temporarily unavailable during evaluation. This summary was generated using backup analysis.*"

// Summary renders the templated interview summary from aggregate statistics.
func Summary(answers []domain.Answer, finalScore float64, serviceUnavailable bool) string {
	n := len(answers)
	var totalTime, high, low int
	for _, a := range answers {
		totalTime += a.TimeSpentSeconds
		switch {
		case a.Score >= 7:
			high++
		case a.Score < 5:
			low++
		}
	}
	avgTime := 0
	if n > 0 {
		avgTime = int(math.Round(float64(totalTime) / float64(n)))
	}

	var b strings.Builder
	b.WriteString("**INTERVIEW PERFORMANCE SUMMARY**\n\n")
	fmt.Fprintf(&b, "**Overall Assessment:** %s\n\n", performanceLevel(finalScore))

	b.WriteString("**Key Metrics:**\n")
	fmt.Fprintf(&b, "- Final Score: %.1f/10\n", finalScore)
	fmt.Fprintf(&b, "- Questions Completed: %d\n", n)
	fmt.Fprintf(&b, "- Total Time Spent: %d seconds\n", totalTime)
	fmt.Fprintf(&b, "- Average Time per Question: %d seconds\n", avgTime)
	fmt.Fprintf(&b, "- Strong Responses: %d/%d\n", high, n)
	fmt.Fprintf(&b, "- Responses Needing Improvement: %d/%d\n\n", low, n)

	b.WriteString("**Performance Analysis:**\n")
	switch {
	case finalScore >= 7:
		b.WriteString("Candidate demonstrated strong technical knowledge with well-structured responses and appropriate use of technical concepts.\n\n")
	case finalScore >= 5:
		b.WriteString("Candidate showed basic technical understanding but responses could benefit from more depth and specific examples.\n\n")
	default:
		b.WriteString("Candidate needs significant improvement in technical knowledge and problem-solving approach.\n\n")
	}

	b.WriteString("**Areas of Strength:**\n")
	if high > 0 {
		fmt.Fprintf(&b, "- Performed well on %d questions, showing good technical comprehension\n", high)
	} else {
		b.WriteString("- Attempted all questions with basic understanding\n")
	}
	b.WriteString("- Completed the interview within the allotted time frame\n")
	if finalScore >= 6 {
		b.WriteString("- Demonstrated problem-solving abilities\n")
	}
	b.WriteString("\n")

	b.WriteString("**Areas for Improvement:**\n")
	if low > 0 {
		fmt.Fprintf(&b, "- %d responses need significant improvement in technical depth\n", low)
	}
	b.WriteString("- Focus on providing more detailed technical explanations\n")
	b.WriteString("- Practice with specific examples and code implementations\n")
	b.WriteString("- Strengthen fundamental technical concepts\n\n")

	fmt.Fprintf(&b, "**Recommendation:** %s", recommendation(finalScore))
	if serviceUnavailable {
		b.WriteString("\n\n" + UnavailableNote)
	}
	return b.String()
}

func performanceLevel(score float64) string {
	switch {
	case score >= 8:
		return "Outstanding performance with excellent technical depth and understanding."
	case score >= 6.5:
		return "Good performance demonstrating solid technical competency."
	case score >= 5:
		return "Adequate performance with room for technical improvement."
	}
	return "Performance indicates need for significant technical development."
}

func recommendation(score float64) string {
	switch {
	case score >= 8:
		return "Strong candidate with comprehensive knowledge. Highly recommended for technical roles."
	case score >= 6.5:
		return "Capable candidate with good technical foundation. Recommended for most technical positions."
	case score >= 5:
		return "Shows potential but would benefit from additional technical development and preparation."
	}
	return "Extensive preparation and skill development recommended before pursuing technical roles."
}
