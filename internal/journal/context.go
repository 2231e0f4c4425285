package journal

import (
	"fmt"
	"sort"
	"time"

	"github.com/silverl/distill/internal/memory"
	"github.com/silverl/distill/pkg/model"
)

// BuildDailyContext assembles the synthesis input for one date:
// session summaries, rolling memory (threads active in the last
// MemoryWindowDays, entities mentioned the day before), active editorial
// notes (global or matching this date's ISO week), unused seeds, and
// project descriptors for every project touched.
func BuildDailyContext(
	date string,
	style string,
	sessions []model.Session,
	mem *model.UnifiedMemory,
	notes []model.EditorialNote,
	seeds []model.Seed,
	projects []model.ProjectDescriptor,
	targetWordCount int,
	memoryWindowDays int,
) (model.DailyContext, error) {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return model.DailyContext{}, err
	}

	summaries := make([]model.SessionSummary, 0, len(sessions))
	touched := model.NewStringSet()
	for _, s := range sessions {
		summaries = append(summaries, s.Summarize())
		if s.Project != "" {
			touched.Add(s.Project)
		}
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })

	weekTarget := "week:" + isoWeekString(parsed)

	var activeNotes []model.EditorialNote
	for _, n := range notes {
		if n.Used {
			continue
		}
		if n.Target == "" || n.Target == weekTarget {
			activeNotes = append(activeNotes, n)
		}
	}

	var unusedSeeds []model.Seed
	for _, s := range seeds {
		if !s.Used {
			unusedSeeds = append(unusedSeeds, s)
		}
	}

	var projectDescriptors []model.ProjectDescriptor
	for _, p := range projects {
		if touched.Has(p.Name) {
			projectDescriptors = append(projectDescriptors, p)
		}
	}

	activeThreads := memory.ActiveThreads(mem, parsed, memoryWindowDays)
	recentEntities := memory.EntitiesMentionedOn(mem, parsed.AddDate(0, 0, -1))

	return model.DailyContext{
		Date:             date,
		Style:            style,
		Sessions:         summaries,
		ActiveThreads:    activeThreads,
		RecentEntities:   recentEntities,
		EditorialNotes:   activeNotes,
		UnusedSeeds:      unusedSeeds,
		ProjectsTouched:  projectDescriptors,
		TargetWordCount:  targetWordCount,
		MemoryWindowDays: memoryWindowDays,
	}, nil
}

// isoWeekString renders t's ISO week as "2026-W05", matching
// EditorialNote.Target's "week:<ISO-week>" convention.
func isoWeekString(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}
