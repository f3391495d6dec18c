package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/stickies/pkg/app"
	"github.com/aretw0/stickies/pkg/core"
	"github.com/aretw0/stickies/pkg/dashboard"
)

// options holds the internal configuration for the runtime.
type options struct {
	logger        *slog.Logger
	store         core.Store
	order         core.SessionOrder
	windows       app.WindowHost
	confirmer     dashboard.Confirmer
	debounce      time.Duration
	previewLength int
	watch         *bool
	ephemeral     bool
	mustExist     bool
	forceTemp     bool
	devSafety     bool
}

// Option defines a functional option for configuring the runtime.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		devSafety: true,
	}
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDebounce sets the delay between the last edit and the save.
// It overrides the debounce key of the config file.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

// WithPreviewLength sets how many characters of a note the dashboard shows.
func WithPreviewLength(n int) Option {
	return func(o *options) {
		o.previewLength = n
	}
}

// WithWatch enables or disables detection of edits made outside the application.
// Enabled by default for the filesystem store.
func WithWatch(enabled bool) Option {
	return func(o *options) {
		o.watch = &enabled
	}
}

// WithEphemeral keeps notes and the session in memory. Nothing touches the disk.
func WithEphemeral(enabled bool) Option {
	return func(o *options) {
		o.ephemeral = enabled
	}
}

// WithStore injects a custom note store (e.g. mock, remote).
// If provided, the filesystem store is skipped.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithSessionOrder injects a custom session order.
func WithSessionOrder(order core.SessionOrder) Option {
	return func(o *options) {
		o.order = order
	}
}

// WithWindows injects the window host. Defaults to a headless manager.
func WithWindows(w app.WindowHost) Option {
	return func(o *options) {
		o.windows = w
	}
}

// WithConfirmer sets the confirmation asked before a note is deleted.
func WithConfirmer(c dashboard.Confirmer) Option {
	return func(o *options) {
		o.confirmer = c
	}
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true) the data directory is re-rooted into a temporary directory so
// development runs never touch real notes.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}
