// Package analyzer computes per-session tool/outcome statistics, tags, and
// project attribution. It is pure: it never reads or writes Memory, and
// never mutates a Session's raw body.
package analyzer

import (
	"regexp"
	"time"

	"github.com/silverl/distill/internal/project"
	"github.com/silverl/distill/pkg/model"
)

// debuggingPattern, testRunnerPattern and markdownPattern are compiled once at package init,
// matching internal/config's regexp.MustCompile JSONC-stripping idiom.
var (
	debuggingPattern = regexp.MustCompile(`(?i)\b(error|exception|traceback|panic|stack trace|failed to|segfault)\b`)
	testRunnerPattern = regexp.MustCompile(`(?i)\b(go test|pytest|jest|npm test|ginkgo|rspec|cargo test|mvn test|vitest)\b`)
	markdownPattern   = regexp.MustCompile(`(?i)\.(md|markdown|txt|rst|adoc)$`)
)

// Analyzer computes derived Session fields: duration, tool usage, tags,
// and project attribution. It never mutates the Session it receives;
// Analyze returns a new decorated copy.
type Analyzer struct {
	projects *project.Service
}

// New builds an Analyzer from the configured project descriptors, used
// for project attribution's "known project root" step.
func New(projects []model.ProjectDescriptor) *Analyzer {
	return &Analyzer{projects: project.NewService(projects)}
}

// Analyze computes duration, tool_usage, tags, and project for one
// Session. Identical input always yields identical output.
func (a *Analyzer) Analyze(s model.Session) model.Session {
	out := s

	out.DurationSeconds, out.DurationUnknown = computeDuration(s.StartedAt, s.EndedAt)
	out.ToolUsage = toolUsageHistogram(s.ToolUsage)
	out.Tags = deriveTags(s)
	out.Project = a.projects.Attribute(s.Project, s.ModifiedFiles)

	return out
}

// computeDuration recomputes duration_seconds as ended-started. A missing
// timestamp on either end, or an end preceding start, marks the duration
// unknown rather than negative.
func computeDuration(started, ended time.Time) (int64, bool) {
	if started.IsZero() || ended.IsZero() {
		return 0, true
	}
	d := ended.Sub(started)
	if d < 0 {
		return 0, true
	}
	return int64(d.Seconds()), false
}

// toolUsageHistogram returns a defensive copy of the tool usage map so
// Analyze never aliases the input Session's map.
func toolUsageHistogram(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// deriveTags builds the tag set: "ai-session" plus the source tag, plus
// derived tags (debugging/testing/feature/documentation) inferred from
// tool outputs and modified files.
func deriveTags(s model.Session) model.StringSet {
	tags := model.NewStringSet("ai-session", string(s.Source))

	hasError := false
	hasTestCommand := false
	hasNewFile := false
	onlyDocsTouched := len(s.ModifiedFiles) > 0

	for _, o := range s.Outcomes {
		switch o.Type {
		case "command_run":
			if testRunnerPattern.MatchString(o.Command) {
				hasTestCommand = true
			}
			if debuggingPattern.MatchString(o.Command) {
				hasError = true
			}
		case "file_modified":
			if !markdownPattern.MatchString(o.Path) {
				onlyDocsTouched = false
			}
		}
	}
	for _, path := range s.ModifiedFiles {
		if !markdownPattern.MatchString(path) {
			onlyDocsTouched = false
		} else {
			hasNewFile = true
		}
	}
	if debuggingPattern.MatchString(s.Body) {
		hasError = true
	}

	if hasError {
		tags.Add("debugging")
	}
	if hasTestCommand {
		tags.Add("testing")
	}
	if len(s.ModifiedFiles) > 0 && !onlyDocsTouched {
		tags.Add("feature")
	}
	if onlyDocsTouched && hasNewFile {
		tags.Add("documentation")
	}

	return tags
}
