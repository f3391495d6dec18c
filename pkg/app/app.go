// Package app is the application runtime: it owns the process-scoped services and
// wires window events to the per-window controllers.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/stickies/pkg/bus"
	"github.com/aretw0/stickies/pkg/core"
	"github.com/aretw0/stickies/pkg/dashboard"
	"github.com/aretw0/stickies/pkg/editor"
	"github.com/aretw0/stickies/pkg/window"
)

// Refresh origins published by the runtime.
const (
	OriginCreate    = "create"
	OriginDashboard = "dashboard"
)

// WindowHost is a window manager the runtime can hook into.
type WindowHost interface {
	core.WindowManager
	// Create creates a window, visible or not.
	Create(ctx context.Context, label string, show bool) error
	// Show makes a window visible without focusing it.
	Show(ctx context.Context, label string) error
	SetHooks(h core.WindowHooks)
	Windows() []core.WindowInfo
	// NewWidget returns the editor widget hosted by a note window.
	NewWidget(label string) core.TextWidget
}

// Watcher reports external changes to the note store.
type Watcher interface {
	Watch(ctx context.Context, notifier core.Notifier) error
	StopWatch(ctx context.Context) error
}

// Config holds the collaborators of an App.
type Config struct {
	Store   core.Store
	Order   core.SessionOrder
	Windows WindowHost
	// Watcher is optional.
	Watcher Watcher
	// DataDir is where notes live on disk, empty for in-memory runs.
	DataDir   string
	Delay     time.Duration
	Confirmer dashboard.Confirmer
	Logger    *slog.Logger
}

// App is the running application.
type App struct {
	store   core.Store
	order   core.SessionOrder
	windows WindowHost
	watcher Watcher
	dataDir string
	delay   time.Duration
	logger  *slog.Logger

	bus       *bus.Bus
	dashboard *dashboard.Aggregator

	mu          sync.Mutex
	controllers map[string]*window.Controller
	widgets     map[core.NoteID]core.TextWidget
	started     bool

	quitting    atomic.Bool
	batchFocus  atomic.Bool
	startupErrs atomic.Uint64
}

// New creates an App. Nothing runs until Start.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil || cfg.Windows == nil {
		return nil, errors.New("app: store and window host are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	delay := cfg.Delay
	if delay <= 0 {
		delay = editor.DefaultDelay
	}

	a := &App{
		store:       cfg.Store,
		order:       cfg.Order,
		windows:     cfg.Windows,
		watcher:     cfg.Watcher,
		dataDir:     cfg.DataDir,
		delay:       delay,
		logger:      logger,
		controllers: make(map[string]*window.Controller),
		widgets:     make(map[core.NoteID]core.TextWidget),
	}
	a.bus = bus.New(bus.WithLogger(logger.With("component", "bus")))

	opts := []dashboard.Option{dashboard.WithLogger(logger.With("component", "dashboard"))}
	if cfg.Confirmer != nil {
		opts = append(opts, dashboard.WithConfirmer(cfg.Confirmer))
	}
	a.dashboard = dashboard.New(cfg.Store, creatorFunc(a.createNote), cfg.Windows, opts...)
	return a, nil
}

// Bus returns the refresh bus.
func (a *App) Bus() *bus.Bus { return a.bus }

// DataDir returns the directory notes are stored in, empty for in-memory runs.
func (a *App) DataDir() string { return a.dataDir }

// Dashboard returns the dashboard aggregator.
func (a *App) Dashboard() *dashboard.Aggregator { return a.dashboard }

// Start starts the services, creates the hidden dashboard window and restores the
// previous session. With nothing to restore, a fresh note is created.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return errors.New("app already started")
	}
	a.started = true
	a.mu.Unlock()

	a.windows.SetHooks(core.WindowHooks{
		Created:   a.onCreated,
		Destroyed: a.onDestroyed,
		Focused:   a.onFocused,
	})

	if err := a.bus.Start(ctx); err != nil {
		return fmt.Errorf("start bus: %w", err)
	}
	if err := a.windows.Create(ctx, core.DashboardLabel, false); err != nil {
		return fmt.Errorf("create dashboard: %w", err)
	}
	if err := a.dashboard.Start(ctx, a.bus); err != nil {
		return err
	}
	if a.watcher != nil {
		if err := a.watcher.Watch(ctx, a.bus); err != nil {
			a.logger.Warn("external changes will not be detected", "error", err)
		}
	}

	return a.restore(ctx)
}

func (a *App) restore(ctx context.Context) error {
	var ids []core.NoteID
	if a.order != nil {
		var err error
		ids, err = a.order.Order()
		if err != nil {
			a.logger.Error("failed to read session order", "error", err)
		}
	}

	if len(ids) == 0 {
		_, err := a.CreateNote(ctx)
		return err
	}

	a.batchFocus.Store(true)
	defer a.batchFocus.Store(false)

	restored := make([]string, 0, len(ids))
	for _, id := range ids {
		label := core.NoteLabel(id)
		if err := a.windows.Create(ctx, label, false); err != nil {
			a.logger.Error("failed to restore note window", "note", string(id), "error", err)
			continue
		}
		restored = append(restored, label)
	}
	for _, label := range restored {
		_ = a.windows.Show(ctx, label)
	}
	if n := len(restored); n > 0 {
		_ = a.windows.Focus(ctx, restored[n-1])
	}
	a.logger.Info("session restored", "notes", len(restored))
	return nil
}

// CreateNote creates a note and opens its editor. Concurrent calls are rejected
// with core.ErrCreateInFlight.
func (a *App) CreateNote(ctx context.Context) (core.NoteID, error) {
	return a.dashboard.CreateNote(ctx)
}

func (a *App) createNote(ctx context.Context) (core.NoteID, error) {
	id, err := a.store.CreateNote(ctx)
	if err != nil {
		return "", err
	}
	if err := a.windows.Open(ctx, core.NoteLabel(id)); err != nil {
		a.bus.Publish(OriginCreate)
		return id, fmt.Errorf("open note %s: %w", id, err)
	}
	a.bus.Publish(OriginCreate)
	return id, nil
}

// OpenNote opens the editor window of id, or focuses it.
func (a *App) OpenNote(ctx context.Context, id core.NoteID) error {
	return a.dashboard.OpenNote(ctx, id)
}

// DeleteNote deletes a note after confirmation, closing its window without saving.
func (a *App) DeleteNote(ctx context.Context, id core.NoteID) error {
	return a.dashboard.DeleteNote(ctx, id)
}

// CloseWindow runs the close action of a window. The dashboard is hidden, a note
// editor is flushed and destroyed.
func (a *App) CloseWindow(ctx context.Context, label string) error {
	c, err := a.controller(label)
	if err != nil {
		return err
	}
	return c.Close(ctx)
}

// TogglePin flips the always-on-top state of a note window.
func (a *App) TogglePin(ctx context.Context, label string) (bool, error) {
	c, err := a.controller(label)
	if err != nil {
		return false, err
	}
	return c.TogglePin(ctx)
}

// Minimize minimizes a window.
func (a *App) Minimize(ctx context.Context, label string) error {
	c, err := a.controller(label)
	if err != nil {
		return err
	}
	return c.Minimize(ctx)
}

// Edit replaces the content of an open note's editor as if the user typed it.
func (a *App) Edit(id core.NoteID, content string) error {
	a.mu.Lock()
	w, ok := a.widgets[id]
	a.mu.Unlock()
	if !ok {
		return fmt.Errorf("note %s: %w", id, core.ErrWindowNotFound)
	}
	w.Type(content)
	return nil
}

// Content returns what the editor of an open note currently shows.
func (a *App) Content(id core.NoteID) (string, error) {
	a.mu.Lock()
	w, ok := a.widgets[id]
	a.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("note %s: %w", id, core.ErrWindowNotFound)
	}
	return w.Value(), nil
}

// FocusNote focuses the window of an open note.
func (a *App) FocusNote(ctx context.Context, id core.NoteID) error {
	return a.windows.Focus(ctx, core.NoteLabel(id))
}

// ShowDashboard shows and focuses the dashboard and refreshes its list.
func (a *App) ShowDashboard(ctx context.Context) error {
	if err := a.windows.Open(ctx, core.DashboardLabel); err != nil {
		return err
	}
	a.bus.Publish(OriginDashboard)
	return nil
}

// BringAllToFront raises every visible note window in session order, then restores
// their pin states and focuses the most recent one. Focus changes made here do not
// reorder the session.
func (a *App) BringAllToFront(ctx context.Context) error {
	a.batchFocus.Store(true)
	defer a.batchFocus.Store(false)

	var rank map[core.NoteID]int
	if a.order != nil {
		ids, err := a.order.Order()
		if err != nil {
			a.logger.Error("failed to read session order", "error", err)
		}
		rank = make(map[core.NoteID]int, len(ids))
		for i, id := range ids {
			rank[id] = i
		}
	}

	var notes []core.WindowInfo
	for _, w := range a.windows.Windows() {
		if w.Visible && !core.ResolveLabel(w.Label).IsDashboard() {
			notes = append(notes, w)
		}
	}
	position := func(w core.WindowInfo) int {
		if r, ok := rank[core.ResolveLabel(w.Label).NoteID]; ok {
			return r
		}
		return len(rank)
	}
	slices.SortStableFunc(notes, func(x, y core.WindowInfo) int {
		return position(x) - position(y)
	})

	var errs []error
	for _, w := range notes {
		errs = append(errs, a.windows.Show(ctx, w.Label), a.windows.SetAlwaysOnTop(ctx, w.Label, true))
	}
	for _, w := range notes {
		errs = append(errs, a.windows.SetAlwaysOnTop(ctx, w.Label, w.Pinned))
	}
	if n := len(notes); n > 0 {
		errs = append(errs, a.windows.Focus(ctx, notes[n-1].Label))
	}

	a.logger.Debug("brought notes to front", "count", len(notes))
	return errors.Join(errs...)
}

// Shutdown closes every note window, flushing pending edits, then stops the
// services. The session order is kept so the next Start restores it.
func (a *App) Shutdown(ctx context.Context) error {
	a.quitting.Store(true)

	a.mu.Lock()
	controllers := make([]*window.Controller, 0, len(a.controllers))
	for _, c := range a.controllers {
		if !c.Role().IsDashboard() {
			controllers = append(controllers, c)
		}
	}
	a.mu.Unlock()

	var errs []error
	for _, c := range controllers {
		if err := c.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if a.watcher != nil {
		errs = append(errs, a.watcher.StopWatch(ctx))
	}
	a.dashboard.Stop()
	errs = append(errs, a.bus.Close())

	if closer, ok := a.order.(interface{ Close() error }); ok {
		errs = append(errs, closer.Close())
	}

	a.logger.Info("shutdown complete", "closed", len(controllers))
	return errors.Join(errs...)
}

// Controller returns the controller of an open window.
func (a *App) Controller(label string) (*window.Controller, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.controllers[label]
	return c, ok
}

func (a *App) controller(label string) (*window.Controller, error) {
	c, ok := a.Controller(label)
	if !ok {
		return nil, fmt.Errorf("%s: %w", label, core.ErrWindowNotFound)
	}
	return c, nil
}

func (a *App) onCreated(ctx context.Context, label string) error {
	var widget core.TextWidget
	role := core.ResolveLabel(label)
	if !role.IsDashboard() {
		widget = a.windows.NewWidget(label)
	}

	deps := window.Deps{
		Store:    a.store,
		Windows:  a.windows,
		Notifier: a.bus,
		Delay:    a.delay,
		Logger:   a.logger,
	}
	if widget != nil {
		deps.Widget = widget
	}

	c, err := window.Start(ctx, label, deps)
	if err != nil {
		a.startupErrs.Add(1)
		return err
	}

	a.mu.Lock()
	a.controllers[label] = c
	if widget != nil {
		a.widgets[role.NoteID] = widget
	}
	a.mu.Unlock()
	return nil
}

func (a *App) onDestroyed(ctx context.Context, label string) {
	role := core.ResolveLabel(label)

	a.mu.Lock()
	c := a.controllers[label]
	delete(a.controllers, label)
	if !role.IsDashboard() {
		delete(a.widgets, role.NoteID)
	}
	a.mu.Unlock()

	if c != nil {
		c.Discard()
	}
	if role.IsDashboard() || a.order == nil || a.quitting.Load() {
		return
	}
	if err := a.order.Remove(role.NoteID); err != nil {
		a.logger.Error("failed to update session order", "note", string(role.NoteID), "error", err)
	}
}

func (a *App) onFocused(ctx context.Context, label string) {
	role := core.ResolveLabel(label)
	if role.IsDashboard() || a.order == nil || a.batchFocus.Load() {
		return
	}
	if err := a.order.Touch(role.NoteID); err != nil {
		a.logger.Error("failed to update session order", "note", string(role.NoteID), "error", err)
	}
}

type creatorFunc func(ctx context.Context) (core.NoteID, error)

func (f creatorFunc) CreateNote(ctx context.Context) (core.NoteID, error) {
	return f(ctx)
}
