package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/aretw0/stickies/pkg/core"
)

const (
	// DefaultPreviewLength is the number of runes kept in a note preview.
	DefaultPreviewLength = 100
	// DefaultEchoWindow is how long the watcher ignores events caused by the store's own writes.
	DefaultEchoWindow = 500 * time.Millisecond

	notesDirName = "notes"
	noteExt      = ".md"
	notePattern  = "*" + noteExt
)

// Store implements core.Store on top of a directory of markdown files.
type Store struct {
	Path     string
	notesDir string
	config   Config
	previews *previewCache

	mu            sync.RWMutex
	ownWrites     map[string]time.Time
	watcherActive bool
	lastExternal  *time.Time
	stopWatch     func(context.Context) error
}

// Config holds the configuration for the filesystem store.
type Config struct {
	Path          string
	MustExist     bool
	PreviewLength int
	EchoWindow    time.Duration
	Logger        *slog.Logger
}

// NewStore creates a new filesystem-backed note store rooted at config.Path.
func NewStore(config Config) *Store {
	if config.PreviewLength <= 0 {
		config.PreviewLength = DefaultPreviewLength
	}
	if config.EchoWindow <= 0 {
		config.EchoWindow = DefaultEchoWindow
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		Path:      config.Path,
		notesDir:  filepath.Join(config.Path, notesDirName),
		config:    config,
		previews:  newPreviewCache(),
		ownWrites: make(map[string]time.Time),
	}
}

// Initialize prepares the data directory and its notes folder.
func (s *Store) Initialize(ctx context.Context) error {
	if s.config.MustExist {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("data path does not exist: %s", s.Path)
		}
		if err != nil {
			return fmt.Errorf("%w: %w", core.ErrStore, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", s.Path)
		}
	}

	if err := os.MkdirAll(s.notesDir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create notes directory: %w", core.ErrStore, err)
	}
	return nil
}

// NotesDir returns the directory holding the note files.
func (s *Store) NotesDir() string {
	return s.notesDir
}

// Load returns the markdown content of a note.
func (s *Store) Load(ctx context.Context, id core.NoteID) (string, error) {
	path, err := s.notePath(id)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%w: load %s: %w", core.ErrStore, id, err)
	}
	return string(data), nil
}

// Save overwrites the content of a note, creating the file if needed.
func (s *Store) Save(ctx context.Context, id core.NoteID, content string) error {
	path, err := s.notePath(id)
	if err != nil {
		return err
	}

	s.markOwnWrite(path)
	if err := replaceNote(path, content); err != nil {
		return fmt.Errorf("%w: save %s: %w", core.ErrStore, id, err)
	}
	s.previews.invalidate(path)

	s.config.Logger.Debug("note saved", "note", id, "bytes", len(content))
	return nil
}

// Delete removes a note file.
func (s *Store) Delete(ctx context.Context, id core.NoteID) error {
	path, err := s.notePath(id)
	if err != nil {
		return err
	}

	s.markOwnWrite(path)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", id, core.ErrNotFound)
		}
		return fmt.Errorf("%w: delete %s: %w", core.ErrStore, id, err)
	}
	s.previews.invalidate(path)

	s.config.Logger.Debug("note deleted", "note", id)
	return nil
}

// ListAll returns a summary of every note, newest first.
func (s *Store) ListAll(ctx context.Context) ([]core.NoteSummary, error) {
	entries, err := os.ReadDir(s.notesDir)
	if os.IsNotExist(err) {
		return []core.NoteSummary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: list notes: %w", core.ErrStore, err)
	}

	summaries := make([]core.NoteSummary, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || !isNoteFile(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("%w: stat %s: %w", core.ErrStore, name, err)
		}

		path := filepath.Join(s.notesDir, name)
		preview, err := s.preview(path, info.ModTime())
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("%w: read %s: %w", core.ErrStore, name, err)
		}

		summaries = append(summaries, core.NoteSummary{
			ID:        core.NoteID(strings.TrimSuffix(name, noteExt)),
			Preview:   preview,
			UpdatedAt: info.ModTime(),
		})
	}

	slices.SortFunc(summaries, func(a, b core.NoteSummary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return summaries, nil
}

// CreateNote allocates a fresh id and writes an empty note file for it.
func (s *Store) CreateNote(ctx context.Context) (core.NoteID, error) {
	if err := os.MkdirAll(s.notesDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: failed to create notes directory: %w", core.ErrStore, err)
	}

	id := core.NoteID(uuid.NewString())
	path := filepath.Join(s.notesDir, string(id)+noteExt)

	s.markOwnWrite(path)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, notePerm)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %w", core.ErrStore, id, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: create %s: %w", core.ErrStore, id, err)
	}

	s.config.Logger.Debug("note created", "note", id)
	return id, nil
}

func (s *Store) preview(path string, modTime time.Time) (string, error) {
	if p, ok := s.previews.get(path, modTime); ok {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	p := buildPreview(string(data), s.config.PreviewLength)
	s.previews.put(path, modTime, p)
	return p, nil
}

// notePath maps an id to its file, rejecting ids that would escape the notes directory.
func (s *Store) notePath(id core.NoteID) (string, error) {
	raw := string(id)
	if raw == "" || raw == "." || raw == ".." ||
		strings.ContainsAny(raw, `/\`) || strings.Contains(raw, "..") ||
		strings.HasPrefix(raw, TempFilePrefix) {
		return "", fmt.Errorf("%w: invalid note id %q", core.ErrStore, raw)
	}
	return filepath.Join(s.notesDir, raw+noteExt), nil
}

func (s *Store) markOwnWrite(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.ownWrites[path] = now
	for p, at := range s.ownWrites {
		if now.Sub(at) > s.config.EchoWindow {
			delete(s.ownWrites, p)
		}
	}
}

func (s *Store) isOwnWrite(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	at, ok := s.ownWrites[path]
	return ok && time.Since(at) <= s.config.EchoWindow
}

func isNoteFile(name string) bool {
	if strings.HasPrefix(name, TempFilePrefix) {
		return false
	}
	ok, err := doublestar.Match(notePattern, name)
	return err == nil && ok
}

var _ core.Store = (*Store)(nil)
