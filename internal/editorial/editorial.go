// Package editorial implements the Seed/EditorialNote stores
// (.distill-seeds, .distill-notes): append-only creation plus a
// compare-and-set mark_used, following the same atomic
// load-mutate-commit technique as internal/memory and internal/state.
package editorial

import (
	"context"
	"errors"
	"fmt"

	"github.com/silverl/distill/internal/distillerr"
	"github.com/silverl/distill/internal/storage"
	"github.com/silverl/distill/pkg/model"
)

var (
	seedsPath = []string{".distill-seeds"}
	notesPath = []string{".distill-notes"}
)

type seedFile struct {
	Seeds []model.Seed `json:"seeds"`
}

type noteFile struct {
	Notes []model.EditorialNote `json:"notes"`
}

// Store is the Seed/EditorialNote capability.
type Store struct {
	storage *storage.Storage
}

// New builds a Store backed by the given storage root.
func New(s *storage.Storage) *Store {
	return &Store{storage: s}
}

// LoadSeeds returns every persisted seed, or none if the store is empty.
func (st *Store) LoadSeeds(ctx context.Context) ([]model.Seed, error) {
	var sf seedFile
	err := st.storage.Get(ctx, seedsPath, &sf)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load seeds: %s", distillerr.StateCorrupt, err)
	}
	return sf.Seeds, nil
}

// AddSeed appends a new seed; seeds are otherwise append-only.
func (st *Store) AddSeed(ctx context.Context, seed model.Seed) error {
	seeds, err := st.LoadSeeds(ctx)
	if err != nil {
		return err
	}
	seeds = append(seeds, seed)
	return st.storage.Put(ctx, seedsPath, seedFile{Seeds: seeds})
}

// MarkSeedUsed flips a seed's used flag to true and records usedIn, a
// compare-and-set keyed on id. A
// seed already marked used is left unchanged rather than overwritten.
func (st *Store) MarkSeedUsed(ctx context.Context, id, usedIn string) error {
	var sf seedFile
	err := st.storage.Get(ctx, seedsPath, &sf)
	if err != nil {
		return fmt.Errorf("%w: mark seed used: %s", distillerr.StateCorrupt, err)
	}
	for i := range sf.Seeds {
		if sf.Seeds[i].ID == id && !sf.Seeds[i].Used {
			sf.Seeds[i].Used = true
			sf.Seeds[i].UsedIn = usedIn
			break
		}
	}
	return st.storage.Put(ctx, seedsPath, sf)
}

// LoadNotes returns every persisted editorial note.
func (st *Store) LoadNotes(ctx context.Context) ([]model.EditorialNote, error) {
	var nf noteFile
	err := st.storage.Get(ctx, notesPath, &nf)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load notes: %s", distillerr.StateCorrupt, err)
	}
	return nf.Notes, nil
}

// AddNote appends a new editorial note.
func (st *Store) AddNote(ctx context.Context, note model.EditorialNote) error {
	notes, err := st.LoadNotes(ctx)
	if err != nil {
		return err
	}
	notes = append(notes, note)
	return st.storage.Put(ctx, notesPath, noteFile{Notes: notes})
}

// MarkNoteUsed flips a note's used flag, the same compare-and-set
// discipline as MarkSeedUsed. A note whose target
// never matched a date or theme keeps used=false indefinitely — callers
// only mark a note used once its targeted context actually fired.
func (st *Store) MarkNoteUsed(ctx context.Context, id string) error {
	var nf noteFile
	err := st.storage.Get(ctx, notesPath, &nf)
	if err != nil {
		return fmt.Errorf("%w: mark note used: %s", distillerr.StateCorrupt, err)
	}
	for i := range nf.Notes {
		if nf.Notes[i].ID == id && !nf.Notes[i].Used {
			nf.Notes[i].Used = true
			break
		}
	}
	return st.storage.Put(ctx, notesPath, nf)
}
