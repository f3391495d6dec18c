package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Path          string     `json:"path"`
	NotesDir      string     `json:"notes_dir"`
	PreviewLength int        `json:"preview_length"`
	CacheSize     int        `json:"cache_size"`
	WatcherActive bool       `json:"watcher_active"`
	LastExternal  *time.Time `json:"last_external,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StoreState{
		Path:          s.Path,
		NotesDir:      s.notesDir,
		PreviewLength: s.config.PreviewLength,
		CacheSize:     s.previews.Len(),
		WatcherActive: s.watcherActive,
		LastExternal:  s.lastExternal,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "note-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)

func (s *Store) setWatcherActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watcherActive = active
}

func (s *Store) recordExternal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.lastExternal = &now
}
