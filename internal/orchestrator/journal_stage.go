package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/silverl/distill/internal/distillerr"
	"github.com/silverl/distill/internal/event"
	"github.com/silverl/distill/internal/journal"
	"github.com/silverl/distill/internal/state"
	"github.com/silverl/distill/pkg/model"
)

// JournalOutcome reports what happened when the orchestrator attempted
// to synthesize one (date, style) journal: Entry is non-nil only when
// synthesis produced or read back a journal; Pending means the retry
// budget was already exhausted on a prior run and this date was
// skipped until a successful rerun clears the flag, or that synthesis
// failed on this run with distillerr.LLMUnavailable.
type JournalOutcome struct {
	Entry   *model.JournalEntry
	Pending bool
	Skipped bool
}

// SynthesizeJournal builds the DailyContext for date/style from the
// ingested sessions plus rolling memory, editorial notes, and seeds, then
// drives internal/journal.Synthesizer. On a freshly generated entry it
// folds the synthesized decisions/open-questions/themes back into
// UnifiedMemory via RecordDaily/UpdateThreads/UpdateEntities.
func (o *Orchestrator) SynthesizeJournal(ctx context.Context, date, style string, sessions []model.Session, readIDs []string, force bool) (JournalOutcome, error) {
	sessionIDs := make([]string, 0, len(sessions))
	for _, s := range sessions {
		sessionIDs = append(sessionIDs, s.ID)
	}
	configHash, err := state.HashConfig(o.Config.Journal)
	if err != nil {
		return JournalOutcome{}, fmt.Errorf("orchestrator: hash journal config: %w", err)
	}

	decision, err := o.state.CheckJournal(ctx, date, style, sessionIDs, configHash, force)
	if err != nil {
		return JournalOutcome{}, err
	}
	if decision == state.JournalPendingSkip {
		publishEvent(event.DatePending, event.DatePendingData{Date: date, Style: style})
		return JournalOutcome{Pending: true}, nil
	}

	mem, err := o.memory.Load(ctx)
	if err != nil {
		return JournalOutcome{}, err
	}
	notes, err := o.editorial.LoadNotes(ctx)
	if err != nil {
		return JournalOutcome{}, err
	}
	seeds, err := o.editorial.LoadSeeds(ctx)
	if err != nil {
		return JournalOutcome{}, err
	}

	dctx, err := journal.BuildDailyContext(
		date, style, sessions, mem, notes, seeds, o.Config.Projects,
		o.Config.Journal.TargetWordCount, o.Config.Journal.MemoryWindowDays,
	)
	if err != nil {
		return JournalOutcome{}, fmt.Errorf("orchestrator: build daily context: %w", err)
	}

	publishEvent(event.JournalStarted, event.JournalStartedData{Date: date, Style: style})

	entry, err := o.journal.Synthesize(ctx, dctx, sessions, configHash, force)
	if err != nil {
		publishEvent(event.JournalFailed, event.JournalFailedData{Date: date, Style: style, Error: err.Error()})
		if errors.Is(err, distillerr.LLMUnavailable) {
			publishEvent(event.DatePending, event.DatePendingData{Date: date, Style: style})
			return JournalOutcome{Pending: true}, nil
		}
		return JournalOutcome{}, err
	}

	if decision == state.JournalUpToDate {
		publishEvent(event.JournalSkipped, event.JournalSkippedData{Date: date, Style: style})
		return JournalOutcome{Entry: entry, Skipped: true}, nil
	}

	publishEvent(event.JournalCommitted, event.JournalCommittedData{
		Date: date, Style: style, WordCount: entry.WordCount, FilePath: fmt.Sprintf("journal/journal-%s-%s.md", date, style),
	})

	// A regenerated journal makes any blog post sourced from this date
	// stale; those posts rebuild on the next blog run.
	if err := o.state.InvalidateBlogsForDate(ctx, date); err != nil {
		return JournalOutcome{Entry: entry}, err
	}

	if err := o.foldJournalIntoMemory(ctx, date, readIDs, sessionIDs, entry); err != nil {
		return JournalOutcome{Entry: entry}, err
	}
	for _, n := range dctx.EditorialNotes {
		if err := o.editorial.MarkNoteUsed(ctx, n.ID); err != nil {
			return JournalOutcome{Entry: entry}, err
		}
	}
	for _, s := range dctx.UnusedSeeds {
		if err := o.editorial.MarkSeedUsed(ctx, s.ID, date+"|"+style); err != nil {
			return JournalOutcome{Entry: entry}, err
		}
	}

	return JournalOutcome{Entry: entry}, nil
}

// foldJournalIntoMemory extracts insights/decisions/open-questions from
// the synthesized body and commits them, plus the day's tags as active
// threads, back into UnifiedMemory.
func (o *Orchestrator) foldJournalIntoMemory(ctx context.Context, date string, readIDs, sessionIDs []string, entry *model.JournalEntry) error {
	insights, decisions, openQuestions := extractMemorySignals(entry.BodyMarkdown)

	if err := o.memory.RecordDaily(ctx, date, sessionIDs, readIDs, entry.Tags, insights, decisions, openQuestions); err != nil {
		return fmt.Errorf("orchestrator: record daily memory: %w", err)
	}

	parsedDate, err := time.Parse("2006-01-02", date)
	if err != nil {
		return fmt.Errorf("orchestrator: parse journal date: %w", err)
	}
	if err := o.memory.UpdateThreads(ctx, entry.Tags.Slice(), parsedDate); err != nil {
		return fmt.Errorf("orchestrator: update threads: %w", err)
	}
	for _, project := range entry.Projects {
		if err := o.memory.UpdateEntities(ctx, []string{project}, parsedDate, "project", entry.Date); err != nil {
			return fmt.Errorf("orchestrator: update entities: %w", err)
		}
	}
	return nil
}
