package blog

import (
	"regexp"
	"strings"
)

var headingLinePattern = regexp.MustCompile(`(?m)^##+\s+(.+)$`)
var quotedSnippetPattern = regexp.MustCompile("`([^`]{3,160})`|\"([^\"]{8,160})\"")
var numberedStepPattern = regexp.MustCompile(`(?m)^\s*\d+\.\s+\S`)
var arrowPattern = regexp.MustCompile(`->|\x{2192}`)

// extractKeyPointsAndExamples applies the dedup-fingerprint heuristic: a key
// point is the first sentence of every non-title (## or deeper) heading
// section; an example is any short quoted or backtick-fenced snippet.
func extractKeyPointsAndExamples(body string) (keyPoints, examples []string) {
	sections := splitSections(body)
	for _, section := range sections {
		if sentence := firstSentence(section); sentence != "" {
			keyPoints = append(keyPoints, sentence)
		}
	}

	for _, match := range quotedSnippetPattern.FindAllStringSubmatch(body, -1) {
		snippet := match[1]
		if snippet == "" {
			snippet = match[2]
		}
		examples = append(examples, strings.TrimSpace(snippet))
	}

	return keyPoints, examples
}

// splitSections returns the body text following each "## " (or deeper)
// heading line, up to the next heading of any level.
func splitSections(body string) []string {
	locs := headingLinePattern.FindAllStringIndex(body, -1)
	var sections []string
	for i, loc := range locs {
		start := loc[1]
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		sections = append(sections, body[start:end])
	}
	return sections
}

// firstSentence returns the first sentence of text, trimmed, or "" if
// text has no sentence-ending punctuation within a reasonable span.
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

// hasStructuralCues reports whether body contains numbered steps or
// arrow-joined components, the insertion trigger for a diagram block.
func hasStructuralCues(body string) bool {
	return numberedStepPattern.MatchString(body) || arrowPattern.MatchString(body)
}
