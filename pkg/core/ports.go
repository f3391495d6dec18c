package core

import (
	"context"
	"time"
)

// Store is the durable note store.
// Adhering to this interface keeps the synchronization layer independent of the
// underlying storage (filesystem, memory, SQL, ...).
type Store interface {
	// Load returns the content of a note. It fails with ErrNotFound for unknown ids.
	Load(ctx context.Context, id NoteID) (string, error)

	// Save overwrites the content of a note. It is idempotent.
	Save(ctx context.Context, id NoteID, content string) error

	// Delete removes a note. It fails with ErrNotFound if the note is already gone.
	Delete(ctx context.Context, id NoteID) error

	// ListAll returns a summary of every note. Ordering is stable enough for display.
	ListAll(ctx context.Context) ([]NoteSummary, error)

	// CreateNote allocates a fresh id with empty content.
	CreateNote(ctx context.Context) (NoteID, error)
}

// WindowManager drives the native windows. Every operation is keyed by label,
// which encodes the window role (see ResolveLabel).
type WindowManager interface {
	// Open creates the window, or shows and focuses it if it already exists.
	Open(ctx context.Context, label string) error
	Focus(ctx context.Context, label string) error
	Hide(ctx context.Context, label string) error
	Destroy(ctx context.Context, label string) error
	SetAlwaysOnTop(ctx context.Context, label string, onTop bool) error
	Minimize(ctx context.Context, label string) error
}

// WindowInfo is a snapshot of one window's state.
type WindowInfo struct {
	Label     string
	Visible   bool
	Pinned    bool
	Minimized bool
	Created   time.Time
}

// WindowHooks are the window events a host reports, in the order they happen.
type WindowHooks struct {
	// Created runs when a window is created. An error aborts the creation.
	Created func(ctx context.Context, label string) error
	// Destroyed runs after a window has been removed.
	Destroyed func(ctx context.Context, label string)
	// Focused runs when a window receives focus.
	Focused func(ctx context.Context, label string)
}

// EditorWidget is the embedded markdown editor of a note window.
type EditorWidget interface {
	// Mount shows initial and calls onChange on every user edit.
	Mount(initial string, onChange func(markdown string))
}

// TextWidget is an editor widget whose content can also be driven and read from
// outside, e.g. by a scripting shell.
type TextWidget interface {
	EditorWidget
	// Type replaces the content and emits the change as a user edit would.
	Type(markdown string)
	Value() string
}

// Notifier receives "notes may have changed" signals.
type Notifier interface {
	Publish(origin string)
}

// SessionOrder remembers which notes were open, least recently focused first.
type SessionOrder interface {
	Order() ([]NoteID, error)
	Touch(id NoteID) error
	Remove(id NoteID) error
}
