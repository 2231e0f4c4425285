// Package blogcontext implements the blog context builder: it reads
// journal entries over a window, detects recurring themes, and assembles
// the WeeklyContext/ThematicContext inputs the blog synthesizer consumes.
package blogcontext

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/silverl/distill/pkg/model"
)

// defaultMinJournalsForWeekly is the minimum number of journal entries
// an ISO week must contain before a weekly post is attempted.
const defaultMinJournalsForWeekly = 3

// defaultThemeThreshold is the minimum mention count (K) a memory thread
// needs to become a thematic candidate. The count is the thread's
// lifetime MentionCount; it is not measured over a 14-day window.
const defaultThemeThreshold = 3

const themeCandidateWindowDays = 14
const themeCandidateRecencyDays = 30

// Embedder is an optional capability for recurring-subtopic and
// theme-similarity detection beyond exact-string matching. No backend is
// wired in this build (see DESIGN.md); recurring-subtopic detection below
// always falls back to exact-string matching.
type Embedder interface {
	Embed(text string) ([]float32, error)
	Nearest(vector []float32, k int) ([]string, error)
}

// Builder is the Blog Context Builder capability.
type Builder struct {
	MinJournalsForWeekly int
	ThemeThreshold       int
	Embedder             Embedder // optional; nil uses exact-match only
}

// New returns a Builder configured with the default thresholds.
func New() *Builder {
	return &Builder{
		MinJournalsForWeekly: defaultMinJournalsForWeekly,
		ThemeThreshold:       defaultThemeThreshold,
	}
}

// BuildWeeklyContext reads every JournalEntry whose Date falls in isoWeek
// and returns the union of projects/themes, sub-topics recurring across
// ≥2 journals, and merged decisions/open-questions. ok is false when
// fewer than MinJournalsForWeekly journals exist for the week, so a
// sparse week is skipped rather than producing an empty post.
func (b *Builder) BuildWeeklyContext(isoWeek string, journals []model.JournalEntry, mem *model.UnifiedMemory) (model.WeeklyContext, bool) {
	var inWeek []model.JournalEntry
	for _, j := range journals {
		if journalISOWeek(j.Date) == isoWeek {
			inWeek = append(inWeek, j)
		}
	}
	if len(inWeek) < b.MinJournalsForWeekly {
		return model.WeeklyContext{}, false
	}

	projects := model.NewStringSet()
	for _, j := range inWeek {
		for _, p := range j.Projects {
			projects.Add(p)
		}
	}

	themes := activeThreadNamesInWeek(mem, isoWeek)

	var decisions, openQuestions []string
	for _, entry := range dailyEntriesInWeek(mem, isoWeek) {
		decisions = appendUnique(decisions, entry.Decisions...)
		openQuestions = appendUnique(openQuestions, entry.OpenQuestions...)
	}

	return model.WeeklyContext{
		ISOWeek:         isoWeek,
		Projects:        projects,
		Themes:          themes,
		RecurringTopics: recurringSubTopics(inWeek),
		Decisions:       decisions,
		OpenQuestions:   openQuestions,
		JournalCount:    len(inWeek),
	}, true
}

// ThemeCandidates ranks memory threads eligible for a thematic post:
// mention_count >= ThemeThreshold, last_seen within themeCandidateRecencyDays
// of asOf, and no thematic post already published for that theme
// (publishedThemes). MentionCount accrues over the thread's whole life;
// no per-window count is kept, and themeCandidateWindowDays is not used
// in the selection.
// Ranking is by (mention_count desc, recency desc, absence-of-prior-post
// first), ties broken lexicographically by theme name.
func (b *Builder) ThemeCandidates(mem *model.UnifiedMemory, asOf time.Time, publishedThemes map[string]bool, journals []model.JournalEntry) []model.ThemeCandidate {
	recencyCutoff := asOf.AddDate(0, 0, -themeCandidateRecencyDays)

	var candidates []model.ThemeCandidate
	for name, thread := range mem.Threads {
		if publishedThemes[name] {
			continue
		}
		if thread.LastSeen.Before(recencyCutoff) {
			continue
		}
		if thread.MentionCount < b.ThemeThreshold {
			continue
		}

		candidates = append(candidates, model.ThemeCandidate{
			Theme:        name,
			MentionCount: thread.MentionCount,
			LastSeen:     thread.LastSeen,
			Excerpts:     excerptsMentioning(journals, name),
			Entities:     entitiesFor(mem, name),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, c := candidates[i], candidates[j]
		if a.MentionCount != c.MentionCount {
			return a.MentionCount > c.MentionCount
		}
		if !a.LastSeen.Equal(c.LastSeen) {
			return a.LastSeen.After(c.LastSeen)
		}
		return a.Theme < c.Theme
	})
	return candidates
}

func journalISOWeek(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	year, week := t.ISOWeek()
	return isoWeekLabel(year, week)
}

func isoWeekLabel(year, week int) string {
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// weekStart returns the Monday of the given ISO week label ("2026-W05").
func weekStart(isoWeek string) time.Time {
	year, week, ok := parseISOWeekLabel(isoWeek)
	if !ok {
		return time.Time{}
	}
	jan4 := time.Date(year, 1, 4, 0, 0, 0, 0, time.UTC)
	isoOffset := int(jan4.Weekday())
	if isoOffset == 0 {
		isoOffset = 7
	}
	monday := jan4.AddDate(0, 0, -(isoOffset - 1))
	return monday.AddDate(0, 0, (week-1)*7)
}

func parseISOWeekLabel(label string) (year, week int, ok bool) {
	parts := strings.SplitN(label, "-W", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	y, err1 := strconv.Atoi(parts[0])
	w, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return y, w, true
}

func activeThreadNamesInWeek(mem *model.UnifiedMemory, isoWeek string) model.StringSet {
	start := weekStart(isoWeek)
	end := start.AddDate(0, 0, 7)
	out := model.NewStringSet()
	for name, thread := range mem.Threads {
		if thread.Status != model.ThreadActive {
			continue
		}
		if !thread.LastSeen.Before(start) && thread.LastSeen.Before(end) {
			out.Add(name)
		}
	}
	return out
}

func dailyEntriesInWeek(mem *model.UnifiedMemory, isoWeek string) []model.DailyEntry {
	var out []model.DailyEntry
	for _, e := range mem.DailyEntries {
		if journalISOWeek(e.Date) == isoWeek {
			out = append(out, e)
		}
	}
	return out
}

// recurringSubTopics finds lowercased single-word tokens (4+ characters)
// appearing in at least two distinct journal bodies — the exact-string
// recurring-subtopic detector. An Embedder,
// when wired, would replace this with semantic clustering.
func recurringSubTopics(journals []model.JournalEntry) []string {
	counts := make(map[string]int)
	for _, j := range journals {
		seen := make(map[string]bool)
		for _, tok := range tokenize(j.BodyMarkdown) {
			if seen[tok] {
				continue
			}
			seen[tok] = true
			counts[tok]++
		}
	}
	var out []string
	for tok, c := range counts {
		if c >= 2 {
			out = append(out, tok)
		}
	}
	sort.Strings(out)
	return out
}

func tokenize(body string) []string {
	fields := strings.FieldsFunc(strings.ToLower(body), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '-'
	})
	var out []string
	for _, f := range fields {
		if len(f) >= 4 {
			out = append(out, f)
		}
	}
	return out
}

func excerptsMentioning(journals []model.JournalEntry, theme string) []string {
	needle := strings.ToLower(theme)
	var out []string
	for _, j := range journals {
		body := strings.ToLower(j.BodyMarkdown)
		idx := strings.Index(body, needle)
		if idx < 0 {
			continue
		}
		start := idx - 80
		if start < 0 {
			start = 0
		}
		end := idx + len(needle) + 80
		if end > len(j.BodyMarkdown) {
			end = len(j.BodyMarkdown)
		}
		out = append(out, strings.TrimSpace(j.BodyMarkdown[start:end]))
	}
	return out
}

func entitiesFor(mem *model.UnifiedMemory, theme string) []model.EntityRecord {
	var out []model.EntityRecord
	needle := strings.ToLower(theme)
	for _, e := range mem.Entities {
		for _, ctx := range e.RecentContexts {
			if strings.Contains(strings.ToLower(ctx), needle) {
				out = append(out, e)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func appendUnique(existing []string, additions ...string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		seen[s] = struct{}{}
	}
	out := existing
	for _, a := range additions {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
