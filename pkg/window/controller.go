// Package window implements the per-window lifecycle: startup from a label, pin,
// minimize and close. Closing a note editor always awaits the flush of its pending
// edit before the window is destroyed.
package window

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/stickies/pkg/core"
	"github.com/aretw0/stickies/pkg/editor"
)

// Phase is the lifecycle phase of a window.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseEditing
	PhaseClosing
	PhaseDestroyed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseEditing:
		return "editing"
	case PhaseClosing:
		return "closing"
	case PhaseDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Controller handles the lifecycle actions of one window.
type Controller struct {
	label   string
	role    core.WindowRole
	windows core.WindowManager
	logger  *slog.Logger

	mu      sync.Mutex
	phase   Phase
	pinned  bool
	session *editor.Session
	closed  chan struct{}
}

func newController(label string, role core.WindowRole, windows core.WindowManager, logger *slog.Logger) *Controller {
	return &Controller{
		label:   label,
		role:    role,
		windows: windows,
		logger:  logger.With("window", label),
		phase:   PhaseLoading,
		closed:  make(chan struct{}),
	}
}

// Label returns the window label.
func (c *Controller) Label() string { return c.label }

// Role returns the role resolved from the label.
func (c *Controller) Role() core.WindowRole { return c.role }

// Session returns the editor session, nil for the dashboard.
func (c *Controller) Session() *editor.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Pinned reports whether the window is kept always on top.
func (c *Controller) Pinned() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pinned
}

// Done is closed once the window reached PhaseDestroyed.
func (c *Controller) Done() <-chan struct{} { return c.closed }

// TogglePin flips always-on-top and applies it. The dashboard is never pinned.
func (c *Controller) TogglePin(ctx context.Context) (bool, error) {
	if c.role.IsDashboard() {
		return false, nil
	}

	c.mu.Lock()
	next := !c.pinned
	c.mu.Unlock()

	if err := c.windows.SetAlwaysOnTop(ctx, c.label, next); err != nil {
		c.logger.Error("failed to set always on top", "pinned", next, "error", err)
		return !next, err
	}

	c.mu.Lock()
	c.pinned = next
	c.mu.Unlock()
	return next, nil
}

// SetPinned records a pin state applied from outside (e.g. a bring-to-front pass).
func (c *Controller) SetPinned(pinned bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pinned = pinned
}

// Minimize minimizes the window.
func (c *Controller) Minimize(ctx context.Context) error {
	if err := c.windows.Minimize(ctx, c.label); err != nil {
		c.logger.Error("failed to minimize", "error", err)
		return err
	}
	return nil
}

// Close closes the window. The dashboard is only hidden. A note editor is flushed
// first and destroyed only after the flush resolved, successfully or not. A close
// request cannot be cancelled; repeated calls are no-ops.
func (c *Controller) Close(ctx context.Context) error {
	if c.role.IsDashboard() {
		if err := c.windows.Hide(ctx, c.label); err != nil {
			c.logger.Error("failed to hide dashboard", "error", err)
			return err
		}
		return nil
	}

	c.mu.Lock()
	if c.phase == PhaseClosing || c.phase == PhaseDestroyed {
		c.mu.Unlock()
		return nil
	}
	c.phase = PhaseClosing
	session := c.session
	c.mu.Unlock()

	// Closing is not cancellable once started.
	ctx = context.WithoutCancel(ctx)

	var flushErr error
	if session != nil {
		flushErr = session.Close(ctx)
		if flushErr != nil {
			c.logger.Error("flush before close failed, closing anyway", "error", flushErr)
		}
	}

	err := c.windows.Destroy(ctx, c.label)
	if err != nil && !errors.Is(err, core.ErrWindowNotFound) {
		c.logger.Error("failed to destroy window", "error", err)
	} else {
		err = nil
	}

	c.markDestroyed()
	return errors.Join(flushErr, err)
}

// Discard tears the controller down after its window was destroyed from outside.
// A pending edit is dropped, not saved.
func (c *Controller) Discard() {
	c.mu.Lock()
	if c.phase == PhaseDestroyed {
		c.mu.Unlock()
		return
	}
	closing := c.phase == PhaseClosing
	session := c.session
	c.mu.Unlock()

	// A close in progress owns the flush; it will mark the window destroyed.
	if closing {
		return
	}
	if session != nil {
		session.Discard()
	}
	c.markDestroyed()
}

func (c *Controller) markDestroyed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseDestroyed {
		return
	}
	c.phase = PhaseDestroyed
	close(c.closed)
	c.logger.Debug("window destroyed")
}

func (c *Controller) attach(s *editor.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseLoading {
		return fmt.Errorf("window %s: %w", c.label, core.ErrClosed)
	}
	c.session = s
	c.phase = PhaseEditing
	return nil
}
