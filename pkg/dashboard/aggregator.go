// Package dashboard maintains the note list shown by the singleton dashboard window.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/stickies/pkg/bus"
	"github.com/aretw0/stickies/pkg/core"
)

// Store is the subset of core.Store the dashboard reads and deletes through.
type Store interface {
	ListAll(ctx context.Context) ([]core.NoteSummary, error)
	Delete(ctx context.Context, id core.NoteID) error
}

// Creator creates a note and opens its editor window.
type Creator interface {
	CreateNote(ctx context.Context) (core.NoteID, error)
}

// Subscriber is where refresh events come from.
type Subscriber interface {
	Subscribe(ctx context.Context, h bus.Handler) (context.CancelFunc, error)
}

// Confirmer asks the user to confirm deleting a note.
type Confirmer func(ctx context.Context, id core.NoteID) bool

// Aggregator owns the dashboard's note summaries.
type Aggregator struct {
	store   Store
	creator Creator
	windows core.WindowManager
	confirm Confirmer
	logger  *slog.Logger

	mu        sync.RWMutex
	summaries []core.NoteSummary
	applied   uint64
	refreshed time.Time

	issued   atomic.Uint64
	creating atomic.Bool
	failures atomic.Uint64

	unsubscribe context.CancelFunc
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger for the aggregator.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithConfirmer sets the delete confirmation step. Without one, deletes proceed.
func WithConfirmer(c Confirmer) Option {
	return func(a *Aggregator) {
		a.confirm = c
	}
}

// New creates an Aggregator.
func New(store Store, creator Creator, windows core.WindowManager, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:   store,
		creator: creator,
		windows: windows,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	return a
}

// Start subscribes to refresh events and loads the initial list. The subscription
// lives until ctx is done or Stop is called.
func (a *Aggregator) Start(ctx context.Context, sub Subscriber) error {
	cancel, err := sub.Subscribe(ctx, func(ctx context.Context, e core.RefreshEvent) {
		a.logger.Debug("refresh event", "seq", e.Seq, "origin", e.Origin)
		_ = a.Refresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("dashboard subscribe: %w", err)
	}
	a.unsubscribe = cancel

	_ = a.Refresh(ctx)
	return nil
}

// Stop ends the bus subscription.
func (a *Aggregator) Stop() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

// Summaries returns a copy of the current note list.
func (a *Aggregator) Summaries() []core.NoteSummary {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]core.NoteSummary(nil), a.summaries...)
}

// Refresh re-reads every summary from the store and replaces the list wholesale.
// Overlapping calls are ordered by issue time: a response is dropped if a newer
// request has already been applied. On failure the previous list is kept.
func (a *Aggregator) Refresh(ctx context.Context) error {
	seq := a.issued.Add(1)

	list, err := a.store.ListAll(ctx)
	if err != nil {
		a.failures.Add(1)
		a.logger.Error("failed to list notes", "request", seq, "error", err)
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if seq <= a.applied {
		a.logger.Debug("stale list dropped", "request", seq, "applied", a.applied)
		return nil
	}
	a.summaries = list
	a.applied = seq
	a.refreshed = time.Now()
	return nil
}

// CreateNote creates a note through the Creator. Only one creation runs at a time;
// a concurrent call returns core.ErrCreateInFlight. The list is not refreshed here:
// the creation publishes its own refresh event.
func (a *Aggregator) CreateNote(ctx context.Context) (core.NoteID, error) {
	if !a.creating.CompareAndSwap(false, true) {
		a.logger.Debug("create ignored, already in flight")
		return "", core.ErrCreateInFlight
	}
	defer a.creating.Store(false)

	id, err := a.creator.CreateNote(ctx)
	if err != nil {
		a.logger.Error("failed to create note", "error", err)
		return "", err
	}
	a.logger.Info("note created", "note", string(id))
	return id, nil
}

// Creating reports whether a creation is in flight, i.e. whether the "new note"
// control should be disabled.
func (a *Aggregator) Creating() bool {
	return a.creating.Load()
}

// DeleteNote deletes a note once the user confirmed it, then refreshes. The note's
// editor window, if open, is destroyed first without saving so a pending edit cannot
// bring the note back.
func (a *Aggregator) DeleteNote(ctx context.Context, id core.NoteID) error {
	if a.confirm != nil && !a.confirm(ctx, id) {
		a.logger.Debug("delete declined", "note", string(id))
		return nil
	}

	if err := a.windows.Destroy(ctx, core.NoteLabel(id)); err != nil && !errors.Is(err, core.ErrWindowNotFound) {
		a.logger.Warn("failed to destroy note window", "note", string(id), "error", err)
	}

	if err := a.store.Delete(ctx, id); err != nil {
		a.logger.Error("failed to delete note", "note", string(id), "error", err)
		_ = a.Refresh(ctx)
		return err
	}

	a.logger.Info("note deleted", "note", string(id))
	return a.Refresh(ctx)
}

// OpenNote opens the editor window of id, or focuses it if already open.
func (a *Aggregator) OpenNote(ctx context.Context, id core.NoteID) error {
	if err := a.windows.Open(ctx, core.NoteLabel(id)); err != nil {
		a.logger.Error("failed to open note window", "note", string(id), "error", err)
		return err
	}
	return nil
}
