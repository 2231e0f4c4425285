// Package state implements the idempotence layer: it tracks what has
// already been generated/published and decides whether a stage should be
// skipped, regenerated, or retried. It is the only package besides
// internal/memory that touches distill's durable bookkeeping files,
// built on the same atomic internal/storage technique.
package state

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/silverl/distill/internal/distillerr"
	"github.com/silverl/distill/internal/storage"
	"github.com/silverl/distill/pkg/model"
)

var (
	journalStatePath = []string{"state", "journal-state"}
	blogStatePath    = []string{"blog", ".blog-state"}
	blogMemoryPath   = []string{"blog", ".blog-memory"}
)

// JournalStateEntry records the idempotence bookkeeping for one
// (date, style) journal: whether it has been generated, the session-id
// set it was generated from (so a changed set forces regeneration), its
// config hash, and whether it is pending after retry exhaustion.
type JournalStateEntry struct {
	Date          string    `json:"date"`
	Style         string    `json:"style"`
	SessionIDHash string    `json:"session_id_hash"`
	ConfigHash    string    `json:"config_hash"`
	GeneratedAt   time.Time `json:"generated_at"`
	Pending       bool      `json:"pending"`
}

// JournalState is the full durable record of every (date, style) journal's
// idempotence bookkeeping.
type JournalState struct {
	Entries map[string]JournalStateEntry `json:"entries"`
}

func journalKey(date, style string) string { return date + "|" + style }

// Store is the state & idempotence capability. It wraps the same
// internal/storage atomic JSON store the memory package uses, with its
// own schema.
type Store struct {
	storage *storage.Storage
}

// New builds a Store backed by the given storage root.
func New(s *storage.Storage) *Store {
	return &Store{storage: s}
}

// HashConfig canonicalizes a config subtree to JSON and returns its
// sha256, used to detect when a stage's relevant config changed since it
// last ran.
func HashConfig(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("hash config: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// HashSessionIDs returns a stable hash of a session-id set, independent of
// input order, used as the journal cache key alongside (date, style).
func HashSessionIDs(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	sum := sha256.New()
	for _, id := range sorted {
		sum.Write([]byte(id))
		sum.Write([]byte{0})
	}
	return hex.EncodeToString(sum.Sum(nil))
}

// LoadJournalState returns the persisted JournalState, or an empty one if
// none has been committed yet.
func (st *Store) LoadJournalState(ctx context.Context) (*JournalState, error) {
	var js JournalState
	err := st.storage.Get(ctx, journalStatePath, &js)
	if errors.Is(err, storage.ErrNotFound) {
		return &JournalState{Entries: make(map[string]JournalStateEntry)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load journal state: %s", distillerr.StateCorrupt, err)
	}
	if js.Entries == nil {
		js.Entries = make(map[string]JournalStateEntry)
	}
	return &js, nil
}

func (st *Store) commitJournalState(ctx context.Context, js *JournalState) error {
	return st.storage.Put(ctx, journalStatePath, js)
}

// JournalDecision is the outcome of checking whether a journal should be
// (re)generated.
type JournalDecision int

const (
	// JournalUpToDate means an entry already exists for this exact
	// (date, style, session-id-set, config); skip regeneration.
	JournalUpToDate JournalDecision = iota
	// JournalNeedsGeneration means the journal should be synthesized,
	// either because none exists or its inputs changed.
	JournalNeedsGeneration
	// JournalPendingSkip means the journal previously exhausted its retry
	// budget and remains pending; downstream stages skip this date until
	// a successful rerun clears the flag.
	JournalPendingSkip
)

// CheckJournal decides whether (date, style) needs (re)generation,
// checking cache before compute. forceRegenerate
// bypasses the skip check (including the pending flag) but the state is
// still updated on completion.
func (st *Store) CheckJournal(ctx context.Context, date, style string, sessionIDs []string, configHash string, forceRegenerate bool) (JournalDecision, error) {
	if forceRegenerate {
		return JournalNeedsGeneration, nil
	}
	js, err := st.LoadJournalState(ctx)
	if err != nil {
		return JournalNeedsGeneration, err
	}
	entry, ok := js.Entries[journalKey(date, style)]
	if !ok {
		return JournalNeedsGeneration, nil
	}
	if entry.Pending {
		return JournalPendingSkip, nil
	}
	if entry.SessionIDHash != HashSessionIDs(sessionIDs) || entry.ConfigHash != configHash {
		return JournalNeedsGeneration, nil
	}
	return JournalUpToDate, nil
}

// CommitJournalSuccess records that (date, style) was generated from
// sessionIDs under configHash, clearing any prior pending flag.
func (st *Store) CommitJournalSuccess(ctx context.Context, date, style string, sessionIDs []string, configHash string, generatedAt time.Time) error {
	js, err := st.LoadJournalState(ctx)
	if err != nil {
		return err
	}
	js.Entries[journalKey(date, style)] = JournalStateEntry{
		Date:          date,
		Style:         style,
		SessionIDHash: HashSessionIDs(sessionIDs),
		ConfigHash:    configHash,
		GeneratedAt:   generatedAt,
		Pending:       false,
	}
	return st.commitJournalState(ctx, js)
}

// MarkJournalPending records that (date, style)'s retry budget was
// exhausted: no file is written, and the date is skipped by downstream
// stages until a successful rerun clears the flag.
func (st *Store) MarkJournalPending(ctx context.Context, date, style string) error {
	js, err := st.LoadJournalState(ctx)
	if err != nil {
		return err
	}
	entry := js.Entries[journalKey(date, style)]
	entry.Date, entry.Style, entry.Pending = date, style, true
	js.Entries[journalKey(date, style)] = entry
	return st.commitJournalState(ctx, js)
}

// IsJournalPending reports whether (date, style) currently carries a
// pending flag.
func (st *Store) IsJournalPending(ctx context.Context, date, style string) (bool, error) {
	js, err := st.LoadJournalState(ctx)
	if err != nil {
		return false, err
	}
	return js.Entries[journalKey(date, style)].Pending, nil
}

// LoadBlogState returns the persisted BlogState, or an empty one.
func (st *Store) LoadBlogState(ctx context.Context) (*model.BlogState, error) {
	var bs model.BlogState
	err := st.storage.Get(ctx, blogStatePath, &bs)
	if errors.Is(err, storage.ErrNotFound) {
		return &model.BlogState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load blog state: %s", distillerr.StateCorrupt, err)
	}
	return &bs, nil
}

func (st *Store) commitBlogState(ctx context.Context, bs *model.BlogState) error {
	return st.storage.Put(ctx, blogStatePath, bs)
}

// BlogDecision is the outcome of checking whether a blog post should be
// (re)generated.
type BlogDecision int

const (
	BlogUpToDate BlogDecision = iota
	BlogNeedsGeneration
)

// CheckBlog decides whether slug needs (re)generation: up to date only if
// a state entry exists with the same sourceDates set and configHash.
func (st *Store) CheckBlog(ctx context.Context, slug string, sourceDates []string, configHash string, forceRegenerate bool) (BlogDecision, error) {
	if forceRegenerate {
		return BlogNeedsGeneration, nil
	}
	bs, err := st.LoadBlogState(ctx)
	if err != nil {
		return BlogNeedsGeneration, err
	}
	for _, e := range bs.Entries {
		if e.Slug != slug {
			continue
		}
		if e.ConfigHash == configHash && sameStringSet(e.SourceDates, sourceDates) {
			return BlogUpToDate, nil
		}
		return BlogNeedsGeneration, nil
	}
	return BlogNeedsGeneration, nil
}

// CommitBlogSuccess records slug's generation and writes a matching
// BlogMemory entry so future non-repetition checks can build an
// avoid-list from it.
func (st *Store) CommitBlogSuccess(ctx context.Context, post *model.BlogPost, filePath, configHash string) error {
	bs, err := st.LoadBlogState(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i, e := range bs.Entries {
		if e.Slug == post.Slug {
			bs.Entries[i] = model.BlogStateEntry{
				Slug:        post.Slug,
				PostType:    post.PostType,
				GeneratedAt: post.GeneratedAt,
				SourceDates: post.SourceDates,
				FilePath:    filePath,
				ConfigHash:  configHash,
			}
			replaced = true
			break
		}
	}
	if !replaced {
		bs.Entries = append(bs.Entries, model.BlogStateEntry{
			Slug:        post.Slug,
			PostType:    post.PostType,
			GeneratedAt: post.GeneratedAt,
			SourceDates: post.SourceDates,
			FilePath:    filePath,
			ConfigHash:  configHash,
		})
	}
	if err := st.commitBlogState(ctx, bs); err != nil {
		return err
	}

	mem, err := st.LoadBlogMemory(ctx)
	if err != nil {
		return err
	}
	mem.RecentPosts = append(mem.RecentPosts, model.BlogMemoryEntry{
		Slug:         post.Slug,
		PostType:     post.PostType,
		GeneratedAt:  post.GeneratedAt,
		KeyPoints:    post.KeyPoints,
		ExamplesUsed: post.ExamplesUsed,
	})
	return st.commitBlogMemory(ctx, mem)
}

// InvalidateBlogsForDate clears state entries whose SourceDates include
// date, so the next blog run regenerates them — the path a
// force-regenerated journal takes.
func (st *Store) InvalidateBlogsForDate(ctx context.Context, date string) error {
	bs, err := st.LoadBlogState(ctx)
	if err != nil {
		return err
	}
	kept := bs.Entries[:0]
	for _, e := range bs.Entries {
		stale := false
		for _, d := range e.SourceDates {
			if d == date {
				stale = true
				break
			}
		}
		if !stale {
			kept = append(kept, e)
		}
	}
	bs.Entries = kept
	return st.commitBlogState(ctx, bs)
}

// LoadBlogMemory returns the persisted BlogMemory, or an empty one.
func (st *Store) LoadBlogMemory(ctx context.Context) (*model.BlogMemory, error) {
	var bm model.BlogMemory
	err := st.storage.Get(ctx, blogMemoryPath, &bm)
	if errors.Is(err, storage.ErrNotFound) {
		return &model.BlogMemory{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load blog memory: %s", distillerr.StateCorrupt, err)
	}
	return &bm, nil
}

func (st *Store) commitBlogMemory(ctx context.Context, bm *model.BlogMemory) error {
	return st.storage.Put(ctx, blogMemoryPath, bm)
}

// RecentAvoidList returns the key points and examples used from the last
// m posts in BlogMemory, concatenated in most-recent-first order with
// duplicates kept, the
// avoid-list the blog synthesizer's non-repetition prompt is built from.
func RecentAvoidList(mem *model.BlogMemory, m int) (keyPoints, examples []string) {
	entries := mem.RecentPosts
	if len(entries) > m {
		entries = entries[len(entries)-m:]
	}
	for i := len(entries) - 1; i >= 0; i-- {
		keyPoints = append(keyPoints, entries[i].KeyPoints...)
		examples = append(examples, entries[i].ExamplesUsed...)
	}
	return keyPoints, examples
}

func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, x := range a {
		counts[x]++
	}
	for _, x := range b {
		counts[x]--
	}
	for _, c := range counts {
		if c != 0 {
			return false
		}
	}
	return true
}
