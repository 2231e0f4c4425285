package orchestrator

import (
	"regexp"
	"strings"
)

// memoryHeadingPattern matches a "## Decisions" / "## Open questions"
// style heading, case-insensitively, the same "## " section convention
// internal/blog's extractKeyPointsAndExamples reads journal/blog prose
// with.
var memoryHeadingPattern = regexp.MustCompile(`(?mi)^##+\s+(.+)$`)

// extractMemorySignals pulls the rolling-memory record_daily inputs out
// of a synthesized journal entry's body: insights are the first sentence
// of every non-decision/open-question section; decisions and open
// questions are the bullet lines under a heading matching their name, or
// (for open questions) any bulleted sentence ending in "?".
func extractMemorySignals(body string) (insights, decisions, openQuestions []string) {
	locs := memoryHeadingPattern.FindAllStringSubmatchIndex(body, -1)
	for i, loc := range locs {
		heading := strings.ToLower(strings.TrimSpace(body[loc[2]:loc[3]]))
		start := loc[1]
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		section := strings.TrimSpace(body[start:end])

		switch {
		case strings.Contains(heading, "decision"):
			decisions = append(decisions, bulletLines(section)...)
		case strings.Contains(heading, "open question"):
			openQuestions = append(openQuestions, bulletLines(section)...)
		default:
			if sentence := firstSentence(section); sentence != "" {
				insights = append(insights, sentence)
			}
		}
	}
	for _, line := range bulletLines(body) {
		if strings.HasSuffix(strings.TrimSpace(line), "?") {
			openQuestions = append(openQuestions, line)
		}
	}
	return insights, decisions, openQuestions
}

func bulletLines(section string) []string {
	var out []string
	for _, line := range strings.Split(section, "\n") {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimPrefix(trimmed, "- ")
		trimmed = strings.TrimPrefix(trimmed, "* ")
		if trimmed != "" && trimmed != line {
			out = append(out, trimmed)
		}
	}
	return out
}

func firstSentence(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	for _, terminator := range []string{". ", ".\n", "! ", "? "} {
		if idx := strings.Index(trimmed, terminator); idx > 0 {
			return strings.TrimSpace(trimmed[:idx+1])
		}
	}
	if len(trimmed) > 160 {
		trimmed = trimmed[:160]
	}
	return trimmed
}
