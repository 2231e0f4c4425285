// Package memory implements the durable rolling UnifiedMemory store: a
// single record tracking daily entries, recurring threads, tracked
// entities, and the published-post log, persisted atomically via
// internal/storage.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/silverl/distill/internal/distillerr"
	"github.com/silverl/distill/internal/storage"
	"github.com/silverl/distill/pkg/model"
)

// memoryPath is the storage path under which UnifiedMemory is persisted,
// one file: .distill-memory.json under the storage root (see
// internal/storage.Storage.pathToFile).
var memoryPath = []string{".distill-memory"}

// defaultDormancyDays is how long a thread/entity may go unmentioned
// before its status flips to dormant.
const defaultDormancyDays = 14

// Store is the memory store capability: load, commit, and the merge
// operations record_daily/update_threads/update_entities/record_published.
// Store exclusively owns UnifiedMemory's on-disk state; every other
// package receives it as a value and never touches the file directly.
type Store struct {
	storage      *storage.Storage
	dormancyDays int
}

// New builds a Store backed by the given storage root.
func New(s *storage.Storage) *Store {
	return &Store{storage: s, dormancyDays: defaultDormancyDays}
}

// Load returns the persisted UnifiedMemory, or an empty one if none has
// been committed yet.
func (st *Store) Load(ctx context.Context) (*model.UnifiedMemory, error) {
	var mem model.UnifiedMemory
	err := st.storage.Get(ctx, memoryPath, &mem)
	if errors.Is(err, storage.ErrNotFound) {
		return model.NewUnifiedMemory(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load memory: %s", distillerr.StateCorrupt, err)
	}
	if mem.Threads == nil {
		mem.Threads = make(map[string]model.MemoryThread)
	}
	if mem.Entities == nil {
		mem.Entities = make(map[string]model.EntityRecord)
	}
	return &mem, nil
}

// Commit atomically replaces the persisted UnifiedMemory. Readers observe
// either the old or the new state, never a torn write, per
// internal/storage's temp-file-then-rename technique.
func (st *Store) Commit(ctx context.Context, mem *model.UnifiedMemory) error {
	if err := st.storage.Put(ctx, memoryPath, mem); err != nil {
		return fmt.Errorf("commit memory: %w", err)
	}
	return nil
}

// RecordDaily merges session/read ids, themes, insights, decisions, and
// open questions into the daily entry for date, creating it if absent.
func (st *Store) RecordDaily(ctx context.Context, date string, sessionIDs, readIDs []string, themes model.StringSet, insights, decisions, openQuestions []string) error {
	mem, err := st.Load(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i := range mem.DailyEntries {
		if mem.DailyEntries[i].Date == date {
			idx = i
			break
		}
	}
	if idx == -1 {
		mem.DailyEntries = append(mem.DailyEntries, model.DailyEntry{Date: date, Themes: model.NewStringSet()})
		idx = len(mem.DailyEntries) - 1
	}

	entry := &mem.DailyEntries[idx]
	entry.SessionIDs = mergeUnique(entry.SessionIDs, sessionIDs)
	entry.ReadIDs = mergeUnique(entry.ReadIDs, readIDs)
	if entry.Themes == nil {
		entry.Themes = model.NewStringSet()
	}
	for t := range themes {
		entry.Themes.Add(t)
	}
	entry.Insights = mergeUnique(entry.Insights, insights)
	entry.Decisions = mergeUnique(entry.Decisions, decisions)
	entry.OpenQuestions = mergeUnique(entry.OpenQuestions, openQuestions)

	return st.Commit(ctx, mem)
}

// UpdateThreads folds seenThemes into mem.Threads: an existing thread's
// LastSeen and MentionCount are updated; a new theme creates a thread. A
// thread unseen for dormancyDays is marked dormant. This is called as
// part of loaded-then-committed merge, exactly like RecordDaily.
func (st *Store) UpdateThreads(ctx context.Context, seenThemes []string, date time.Time) error {
	mem, err := st.Load(ctx)
	if err != nil {
		return err
	}
	ApplyThreadUpdates(mem, seenThemes, date, st.dormancyDays)
	return st.Commit(ctx, mem)
}

// ApplyThreadUpdates mutates mem.Threads in place: the pure merge logic
// behind UpdateThreads, exposed so the orchestrator can batch several
// updates into a single load/commit round trip.
func ApplyThreadUpdates(mem *model.UnifiedMemory, seenThemes []string, date time.Time, dormancyDays int) {
	for _, theme := range seenThemes {
		thread, ok := mem.Threads[theme]
		if !ok {
			thread = model.MemoryThread{
				Name:      theme,
				FirstSeen: date,
				LastSeen:  date,
				Status:    model.ThreadActive,
			}
		}
		thread.MentionCount++
		if date.After(thread.LastSeen) {
			thread.LastSeen = date
		}
		thread.Status = model.ThreadActive
		mem.Threads[theme] = thread
	}

	cutoff := date.AddDate(0, 0, -dormancyDays)
	for name, thread := range mem.Threads {
		if thread.LastSeen.Before(cutoff) {
			thread.Status = model.ThreadDormant
			mem.Threads[name] = thread
		}
	}
}

// UpdateEntities folds extracted entity names into mem.Entities, same
// recency/mention-count merge as UpdateThreads, recording contextSnippet
// as one of each entity's recent contexts (capped at 5, most recent
// first).
func (st *Store) UpdateEntities(ctx context.Context, extracted []string, date time.Time, entityType, contextSnippet string) error {
	mem, err := st.Load(ctx)
	if err != nil {
		return err
	}
	ApplyEntityUpdates(mem, extracted, date, entityType, contextSnippet)
	return st.Commit(ctx, mem)
}

const maxRecentContexts = 5

// ApplyEntityUpdates is the pure merge logic behind UpdateEntities.
func ApplyEntityUpdates(mem *model.UnifiedMemory, extracted []string, date time.Time, entityType, contextSnippet string) {
	for _, name := range extracted {
		rec, ok := mem.Entities[name]
		if !ok {
			rec = model.EntityRecord{Name: name, EntityType: entityType, FirstSeen: date}
		}
		rec.MentionCount++
		if date.After(rec.LastSeen) {
			rec.LastSeen = date
		}
		if contextSnippet != "" {
			rec.RecentContexts = append([]string{contextSnippet}, rec.RecentContexts...)
			if len(rec.RecentContexts) > maxRecentContexts {
				rec.RecentContexts = rec.RecentContexts[:maxRecentContexts]
			}
		}
		mem.Entities[name] = rec
	}
}

// RecordPublished appends a PublishedRecord; the published log is
// append-only.
func (st *Store) RecordPublished(ctx context.Context, slug, title string, postType model.PostType, date string, platforms model.StringSet) error {
	mem, err := st.Load(ctx)
	if err != nil {
		return err
	}
	mem.Published = append(mem.Published, model.PublishedRecord{
		Slug:      slug,
		Title:     title,
		PostType:  postType,
		Date:      date,
		Platforms: platforms,
	})
	return st.Commit(ctx, mem)
}

// ActiveThreads returns threads whose LastSeen falls within windowDays of
// asOf, sorted by name for deterministic prompt construction.
func ActiveThreads(mem *model.UnifiedMemory, asOf time.Time, windowDays int) []model.MemoryThread {
	cutoff := asOf.AddDate(0, 0, -windowDays)
	var out []model.MemoryThread
	for _, t := range mem.Threads {
		if !t.LastSeen.Before(cutoff) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// EntitiesMentionedOn returns entity records whose LastSeen matches date
// exactly (the "entities mentioned yesterday" DailyContext input), sorted
// by name.
func EntitiesMentionedOn(mem *model.UnifiedMemory, date time.Time) []model.EntityRecord {
	target := date.Format("2006-01-02")
	var out []model.EntityRecord
	for _, e := range mem.Entities {
		if e.LastSeen.Format("2006-01-02") == target {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func mergeUnique(existing, additions []string) []string {
	seen := make(map[string]struct{}, len(existing))
	out := append([]string(nil), existing...)
	for _, s := range existing {
		seen[s] = struct{}{}
	}
	for _, a := range additions {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
