package editorial

import (
	"context"
	"testing"
	"time"

	"github.com/silverl/distill/internal/storage"
	"github.com/silverl/distill/pkg/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(storage.New(t.TempDir()))
}

func TestLoadSeedsEmptyWhenNothingPersisted(t *testing.T) {
	st := newTestStore(t)
	seeds, err := st.LoadSeeds(context.Background())
	if err != nil {
		t.Fatalf("LoadSeeds failed: %v", err)
	}
	if len(seeds) != 0 {
		t.Errorf("expected no seeds, got %+v", seeds)
	}
}

func TestAddSeedAndMarkUsedIsCompareAndSet(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seed := model.Seed{ID: "s1", Text: "write about errgroup", CreatedAt: time.Now()}
	if err := st.AddSeed(ctx, seed); err != nil {
		t.Fatalf("AddSeed failed: %v", err)
	}

	if err := st.MarkSeedUsed(ctx, "s1", "2026-07-30|default"); err != nil {
		t.Fatalf("MarkSeedUsed failed: %v", err)
	}

	seeds, err := st.LoadSeeds(ctx)
	if err != nil {
		t.Fatalf("LoadSeeds failed: %v", err)
	}
	if len(seeds) != 1 || !seeds[0].Used || seeds[0].UsedIn != "2026-07-30|default" {
		t.Fatalf("expected seed marked used, got %+v", seeds)
	}

	// Re-marking an already-used seed with a different UsedIn must be a
	// no-op: the first commit wins.
	if err := st.MarkSeedUsed(ctx, "s1", "2026-07-31|default"); err != nil {
		t.Fatalf("MarkSeedUsed (second call) failed: %v", err)
	}
	seeds, err = st.LoadSeeds(ctx)
	if err != nil {
		t.Fatalf("LoadSeeds failed: %v", err)
	}
	if seeds[0].UsedIn != "2026-07-30|default" {
		t.Errorf("expected UsedIn to stay at first mark, got %q", seeds[0].UsedIn)
	}
}

func TestMarkSeedUsedUnknownIDIsNoop(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.AddSeed(ctx, model.Seed{ID: "s1", Text: "x"}); err != nil {
		t.Fatalf("AddSeed failed: %v", err)
	}
	if err := st.MarkSeedUsed(ctx, "does-not-exist", "wherever"); err != nil {
		t.Fatalf("MarkSeedUsed for unknown id should not error: %v", err)
	}

	seeds, err := st.LoadSeeds(ctx)
	if err != nil {
		t.Fatalf("LoadSeeds failed: %v", err)
	}
	if seeds[0].Used {
		t.Errorf("unrelated seed should be untouched, got %+v", seeds[0])
	}
}

func TestAddNoteAndMarkUsed(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	note := model.EditorialNote{ID: "n1", Text: "mention the retry budget", Target: "week:2026-W31"}
	if err := st.AddNote(ctx, note); err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}

	notes, err := st.LoadNotes(ctx)
	if err != nil {
		t.Fatalf("LoadNotes failed: %v", err)
	}
	if len(notes) != 1 || notes[0].Used {
		t.Fatalf("expected one unused note, got %+v", notes)
	}

	if err := st.MarkNoteUsed(ctx, "n1"); err != nil {
		t.Fatalf("MarkNoteUsed failed: %v", err)
	}
	notes, err = st.LoadNotes(ctx)
	if err != nil {
		t.Fatalf("LoadNotes failed: %v", err)
	}
	if !notes[0].Used {
		t.Errorf("expected note marked used, got %+v", notes[0])
	}
}
