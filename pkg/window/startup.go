package window

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/stickies/pkg/core"
	"github.com/aretw0/stickies/pkg/editor"
)

// Deps are the collaborators a window needs at startup.
type Deps struct {
	Store    core.Store
	Windows  core.WindowManager
	Notifier editor.Notifier
	// Widget is the editor of a note window. Ignored for the dashboard.
	Widget core.EditorWidget
	// Delay is the debounce delay of the editor session.
	Delay  time.Duration
	Logger *slog.Logger
}

// Start runs the startup of the window labelled label: it resolves the role and,
// for a note editor, loads the note and mounts the editor. A load failure is not
// fatal: the editor opens empty.
func Start(ctx context.Context, label string, deps Deps) (*Controller, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	role := core.ResolveLabel(label)
	if role.Degraded {
		logger.Warn("window label has no role prefix, using it as note id",
			"label", label, "note", string(role.NoteID))
	}

	c := newController(label, role, deps.Windows, logger)
	if role.IsDashboard() {
		c.phase = PhaseEditing
		return c, nil
	}

	if role.NoteID == "" {
		return nil, fmt.Errorf("window %q has an empty note id", label)
	}
	if deps.Widget == nil {
		return nil, fmt.Errorf("window %s: no editor widget", label)
	}

	content, err := deps.Store.Load(ctx, role.NoteID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			logger.Warn("note not found, opening empty", "note", string(role.NoteID))
		} else {
			logger.Error("failed to load note, opening empty", "note", string(role.NoteID), "error", err)
		}
		content = ""
	}

	session := editor.NewSession(role.NoteID, content, deps.Store,
		editor.WithDelay(deps.Delay),
		editor.WithNotifier(deps.Notifier),
		editor.WithLogger(logger),
	)
	if err := c.attach(session); err != nil {
		return nil, err
	}
	deps.Widget.Mount(content, session.OnEdit)

	logger.Debug("note window ready", "note", string(role.NoteID), "bytes", len(content))
	return c, nil
}
