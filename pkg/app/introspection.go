package app

import (
	"sort"

	"github.com/aretw0/introspection"
)

// WindowState describes one open window.
type WindowState struct {
	Label  string `json:"label"`
	Role   string `json:"role"`
	Phase  string `json:"phase"`
	Pinned bool   `json:"pinned"`
}

// AppState exposes internal state for observability.
type AppState struct {
	Windows         []WindowState `json:"windows"`
	Quitting        bool          `json:"quitting"`
	BatchFocus      bool          `json:"batch_focus"`
	StartupFailures uint64        `json:"startup_failures"`
	Bus             any           `json:"bus"`
	Dashboard       any           `json:"dashboard"`
}

// State implements introspection.Introspectable.
func (a *App) State() any {
	a.mu.Lock()
	windows := make([]WindowState, 0, len(a.controllers))
	for label, c := range a.controllers {
		windows = append(windows, WindowState{
			Label:  label,
			Role:   c.Role().String(),
			Phase:  c.Phase().String(),
			Pinned: c.Pinned(),
		})
	}
	a.mu.Unlock()
	sort.Slice(windows, func(i, j int) bool { return windows[i].Label < windows[j].Label })

	return AppState{
		Windows:         windows,
		Quitting:        a.quitting.Load(),
		BatchFocus:      a.batchFocus.Load(),
		StartupFailures: a.startupErrs.Load(),
		Bus:             a.bus.State(),
		Dashboard:       a.dashboard.State(),
	}
}

// ComponentType implements introspection.Component.
func (a *App) ComponentType() string {
	return "app"
}

var _ introspection.Introspectable = (*App)(nil)
var _ introspection.Component = (*App)(nil)
