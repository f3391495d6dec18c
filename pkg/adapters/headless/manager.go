// Package headless provides window-manager and editor-widget adapters that keep all
// window state in memory. They let the synchronization layer run without a native
// desktop toolkit: in the interactive shell of cmd/stickies and in tests.
package headless

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/stickies/pkg/core"
)

// Window is a snapshot of one window's state.
type Window = core.WindowInfo

// Hooks are invoked outside the manager's lock, in the order the operations happen.
type Hooks = core.WindowHooks

// Manager implements core.WindowManager in memory.
type Manager struct {
	logger *slog.Logger

	mu      sync.Mutex
	hooks   Hooks
	windows map[string]*Window
	focused string
	journal []string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for the manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithHooks sets the lifecycle hooks.
func WithHooks(h Hooks) Option {
	return func(m *Manager) {
		m.hooks = h
	}
}

// NewManager creates a Manager with no windows.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		windows: make(map[string]*Window),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	return m
}

// SetHooks replaces the lifecycle hooks.
func (m *Manager) SetHooks(h Hooks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = h
}

// NewWidget returns the editor widget hosted by a note window.
func (m *Manager) NewWidget(label string) core.TextWidget {
	return NewWidget()
}

// Open implements core.WindowManager: it creates and shows the window, or shows,
// restores and focuses it if it already exists.
func (m *Manager) Open(ctx context.Context, label string) error {
	return m.Create(ctx, label, true)
}

// Create creates the window if needed. A hidden creation (show=false) leaves an
// existing window untouched.
func (m *Manager) Create(ctx context.Context, label string, show bool) error {
	m.mu.Lock()
	if w, ok := m.windows[label]; ok {
		if show {
			w.Visible = true
			w.Minimized = false
		}
		m.record("open", label)
		m.mu.Unlock()
		if show {
			return m.Focus(ctx, label)
		}
		return nil
	}

	m.windows[label] = &Window{Label: label, Visible: show, Created: time.Now()}
	m.record("create", label)
	created := m.hooks.Created
	m.mu.Unlock()

	m.logger.Debug("window created", "label", label, "visible", show)

	if created != nil {
		if err := created(ctx, label); err != nil {
			m.mu.Lock()
			delete(m.windows, label)
			m.record("abort", label)
			m.mu.Unlock()
			return fmt.Errorf("window %s: %w", label, err)
		}
	}
	if show {
		return m.Focus(ctx, label)
	}
	return nil
}

// Show makes a window visible and restores it without focusing it.
func (m *Manager) Show(ctx context.Context, label string) error {
	return m.update(label, "show", func(w *Window) {
		w.Visible = true
		w.Minimized = false
	})
}

// Focus implements core.WindowManager.
func (m *Manager) Focus(ctx context.Context, label string) error {
	if err := m.update(label, "focus", func(w *Window) {}); err != nil {
		return err
	}

	m.mu.Lock()
	m.focused = label
	focused := m.hooks.Focused
	m.mu.Unlock()

	if focused != nil {
		focused(ctx, label)
	}
	return nil
}

// Hide implements core.WindowManager.
func (m *Manager) Hide(ctx context.Context, label string) error {
	return m.update(label, "hide", func(w *Window) {
		w.Visible = false
	})
}

// Destroy implements core.WindowManager.
func (m *Manager) Destroy(ctx context.Context, label string) error {
	m.mu.Lock()
	if _, ok := m.windows[label]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("%s: %w", label, core.ErrWindowNotFound)
	}
	delete(m.windows, label)
	if m.focused == label {
		m.focused = ""
	}
	m.record("destroy", label)
	destroyed := m.hooks.Destroyed
	m.mu.Unlock()

	m.logger.Debug("window destroyed", "label", label)

	if destroyed != nil {
		destroyed(ctx, label)
	}
	return nil
}

// SetAlwaysOnTop implements core.WindowManager.
func (m *Manager) SetAlwaysOnTop(ctx context.Context, label string, onTop bool) error {
	return m.update(label, fmt.Sprintf("pin=%t", onTop), func(w *Window) {
		w.Pinned = onTop
	})
}

// Minimize implements core.WindowManager.
func (m *Manager) Minimize(ctx context.Context, label string) error {
	return m.update(label, "minimize", func(w *Window) {
		w.Minimized = true
	})
}

// Get returns a snapshot of one window.
func (m *Manager) Get(label string) (Window, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.windows[label]
	if !ok {
		return Window{}, false
	}
	return *w, true
}

// Windows returns a snapshot of every window, sorted by label.
func (m *Manager) Windows() []Window {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Window, 0, len(m.windows))
	for _, w := range m.windows {
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Focused returns the label of the focused window, if any.
func (m *Manager) Focused() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focused
}

// Journal returns every operation applied so far as "op:label" entries.
func (m *Manager) Journal() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.journal...)
}

func (m *Manager) update(label, op string, fn func(w *Window)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[label]
	if !ok {
		return fmt.Errorf("%s: %w", label, core.ErrWindowNotFound)
	}
	fn(w)
	m.record(op, label)
	return nil
}

func (m *Manager) record(op, label string) {
	m.journal = append(m.journal, op+":"+label)
}

var _ core.WindowManager = (*Manager)(nil)
