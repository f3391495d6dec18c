package fs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/supervisor"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/stickies/pkg/core"
)

// OriginExternal is the refresh origin used for edits made outside the application.
const OriginExternal = "external"

const watchDebounce = 50 * time.Millisecond

// Notifier receives a refresh signal whenever a note changes on disk.
type Notifier = core.Notifier

type watchWorker struct {
	*worker.BaseWorker
	store     *Store
	pattern   string
	notifier  Notifier
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
}

func newWatchWorker(store *Store, pattern string, notifier Notifier) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("notes-watcher"),
		store:      store,
		pattern:    pattern,
		notifier:   notifier,
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(w.store.notesDir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.store.notesDir, err)
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(watchDebounce)
	w.store.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

func (w *watchWorker) run(ctx context.Context) (err error) {
	logger := w.store.config.Logger
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				logger.Error("watcher panic", "error", err)
			}
		}
	}()
	defer w.store.setWatcherActive(false)
	defer w.watcher.Close()

	err = w.loop(ctx)

	if !w.debouncer.stopAndWait(5 * time.Second) {
		logger.Warn("watcher debouncer did not drain in time")
	}
	return err
}

func (w *watchWorker) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.store.config.Logger.Error("fsnotify error", "error", wErr)
		}
	}
}

// handleEvent reports whether the event was forwarded to the notifier.
func (w *watchWorker) handleEvent(event fsnotify.Event) bool {
	if w.shouldIgnore(event) {
		return false
	}

	w.store.config.Logger.Debug("external note change", "path", event.Name, "op", event.Op.String())
	w.debouncer.add(event.Name, func() {
		w.store.recordExternal()
		w.notifier.Publish(OriginExternal)
	})
	return true
}

func (w *watchWorker) shouldIgnore(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return true
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, TempFilePrefix) {
		return true
	}
	if ok, err := doublestar.Match(w.pattern, name); err != nil || !ok {
		return true
	}
	return w.store.isOwnWrite(event.Name)
}

// Watch starts a supervised watcher on the notes directory that calls
// notifier.Publish for every external change. The watcher is restarted if it
// fails. Calling Watch again replaces the previous watcher.
func (s *Store) Watch(ctx context.Context, notifier Notifier) error {
	if err := s.StopWatch(ctx); err != nil {
		return err
	}

	spec := supervisor.Spec{
		Name: "notes-watcher",
		Type: string(worker.TypeGoroutine),
		Factory: func() (worker.Worker, error) {
			return newWatchWorker(s, notePattern, notifier), nil
		},
		Backoff: supervisor.Backoff{
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      2,
			ResetDuration:   time.Minute,
			MaxRestarts:     5,
			MaxDuration:     10 * time.Minute,
		},
		RestartPolicy: supervisor.RestartOnFailure,
	}

	sup := supervisor.New("notes-watcher", supervisor.StrategyOneForOne, spec)
	if err := sup.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	s.mu.Lock()
	s.stopWatch = sup.Stop
	s.mu.Unlock()
	return nil
}

// StopWatch stops the watcher started by Watch, if any.
func (s *Store) StopWatch(ctx context.Context) error {
	s.mu.Lock()
	stop := s.stopWatch
	s.stopWatch = nil
	s.mu.Unlock()

	if stop == nil {
		return nil
	}
	return stop(ctx)
}
