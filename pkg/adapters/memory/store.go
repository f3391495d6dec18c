// Package memory provides an in-memory note store. Nothing survives the process;
// it backs ephemeral runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/aretw0/stickies/pkg/core"
)

// DefaultPreviewLength is the number of runes kept in a summary preview.
const DefaultPreviewLength = 100

type entry struct {
	content string
	updated time.Time
}

// Store implements core.Store in memory.
type Store struct {
	mu            sync.RWMutex
	notes         map[core.NoteID]entry
	previewLength int

	// Hooks let tests inject failures or latency. A non-nil error return aborts
	// the operation with that error.
	BeforeSave func(id core.NoteID, content string) error
	BeforeList func() error
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		notes:         make(map[core.NoteID]entry),
		previewLength: DefaultPreviewLength,
	}
}

// Load implements core.Store.
func (s *Store) Load(ctx context.Context, id core.NoteID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.notes[id]
	if !ok {
		return "", fmt.Errorf("%s: %w", id, core.ErrNotFound)
	}
	return e.content, nil
}

// Save implements core.Store.
func (s *Store) Save(ctx context.Context, id core.NoteID, content string) error {
	if id == "" {
		return fmt.Errorf("note has no ID")
	}
	if s.BeforeSave != nil {
		if err := s.BeforeSave(id, content); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[id] = entry{content: content, updated: time.Now()}
	return nil
}

// Delete implements core.Store.
func (s *Store) Delete(ctx context.Context, id core.NoteID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[id]; !ok {
		return fmt.Errorf("%s: %w", id, core.ErrNotFound)
	}
	delete(s.notes, id)
	return nil
}

// ListAll implements core.Store. Newest first, then by id.
func (s *Store) ListAll(ctx context.Context) ([]core.NoteSummary, error) {
	if s.BeforeList != nil {
		if err := s.BeforeList(); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	out := make([]core.NoteSummary, 0, len(s.notes))
	for id, e := range s.notes {
		out = append(out, core.NoteSummary{
			ID:        id,
			Preview:   truncate(e.content, s.previewLength),
			UpdatedAt: e.updated,
		})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// CreateNote implements core.Store.
func (s *Store) CreateNote(ctx context.Context) (core.NoteID, error) {
	id := core.NoteID(uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[id] = entry{updated: time.Now()}
	return id, nil
}

// Len returns the number of notes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

var _ core.Store = (*Store)(nil)
