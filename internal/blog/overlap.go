package blog

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// overlapRatio scores how much of candidate reappears in avoid,
// line-for-line, via a line diff (DiffLinesToChars/DiffMain/
// DiffCharsToLines): the fraction of candidate lines the diff marks
// Equal against avoid is the overlap ratio the non-repetition check
// compares to its threshold.
func overlapRatio(candidate, avoid []string) float64 {
	if len(candidate) == 0 {
		return 0
	}
	candidateText := strings.Join(candidate, "\n")
	avoidText := strings.Join(avoid, "\n")

	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(avoidText, candidateText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var equalLines, insertedLines int
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			equalLines += countLines(d.Text)
		case diffmatchpatch.DiffInsert:
			insertedLines += countLines(d.Text)
		}
	}
	total := equalLines + insertedLines
	if total == 0 {
		return 0
	}
	return float64(equalLines) / float64(total)
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	lines := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		lines++
	}
	return lines
}
