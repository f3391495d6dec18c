package stickies

import (
	"log/slog"
	"time"

	"github.com/aretw0/stickies/internal/platform"
	"github.com/aretw0/stickies/pkg/app"
	"github.com/aretw0/stickies/pkg/core"
	"github.com/aretw0/stickies/pkg/dashboard"
)

// --- Types ---

// App is the running application.
type App = app.App

// NoteID identifies a note.
type NoteID = core.NoteID

// NoteSummary is a dashboard entry.
type NoteSummary = core.NoteSummary

// Confirmer asks the user to confirm deleting a note.
type Confirmer = dashboard.Confirmer

// --- Configuration ---

// Option defines a functional option for configuring the application.
type Option = platform.Option

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithDebounce sets the delay between the last edit and the save.
func WithDebounce(d time.Duration) Option {
	return platform.WithDebounce(d)
}

// WithPreviewLength sets how many characters of a note the dashboard shows.
func WithPreviewLength(n int) Option {
	return platform.WithPreviewLength(n)
}

// WithWatch enables or disables detection of edits made outside the application.
func WithWatch(enabled bool) Option {
	return platform.WithWatch(enabled)
}

// WithEphemeral keeps everything in memory.
func WithEphemeral(enabled bool) Option {
	return platform.WithEphemeral(enabled)
}

// WithStore allows injecting a custom note store.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithSessionOrder allows injecting a custom session order.
func WithSessionOrder(order core.SessionOrder) Option {
	return platform.WithSessionOrder(order)
}

// WithWindows sets the window host.
func WithWindows(w app.WindowHost) Option {
	return platform.WithWindows(w)
}

// WithConfirmer sets the confirmation asked before a note is deleted.
func WithConfirmer(c Confirmer) Option {
	return platform.WithConfirmer(c)
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety controls the sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// New wires the application rooted at dataDir. Call Start to run it.
func New(dataDir string, opts ...Option) (*App, error) {
	return platform.New(dataDir, opts...)
}

// OpenStore opens the note store of dataDir without the window runtime.
func OpenStore(dataDir string, opts ...Option) (core.Store, error) {
	return platform.OpenStore(dataDir, opts...)
}

// --- Safety & Utils ---

// ResolveDataDir determines the actual data directory based on safety rules.
func ResolveDataDir(userPath string, forceTemp bool) string {
	return platform.ResolveDataDir(userPath, forceTemp)
}

// DefaultDataDir returns the per-user data directory.
func DefaultDataDir() (string, error) {
	return platform.DefaultDataDir()
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindDataRoot looks upwards for a data directory indicator.
func FindDataRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
