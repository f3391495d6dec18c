package platform

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/stickies/pkg/adapters/bolt"
	"github.com/aretw0/stickies/pkg/adapters/fs"
	"github.com/aretw0/stickies/pkg/adapters/headless"
	"github.com/aretw0/stickies/pkg/adapters/memory"
	"github.com/aretw0/stickies/pkg/app"
	"github.com/aretw0/stickies/pkg/core"
)

// environment is what New and OpenStore resolve from the data directory.
type environment struct {
	path    string
	store   core.Store
	fsStore *fs.Store
}

// New wires a ready-to-start application rooted at dataDir.
//
//	a, err := stickies.New("~/.config/stickies", stickies.WithDebounce(500*time.Millisecond))
func New(dataDir string, opts ...Option) (*app.App, error) {
	o := parseOptions(opts)

	env, err := prepare(dataDir, o)
	if err != nil {
		return nil, err
	}

	order := o.order
	if order == nil {
		if o.ephemeral {
			order = memory.NewOrder()
		} else {
			order, err = bolt.Open(filepath.Join(env.path, SessionFileName))
			if err != nil {
				return nil, err
			}
		}
	}

	windows := o.windows
	if windows == nil {
		windows = headless.NewManager(headless.WithLogger(component(o.logger, "windows")))
	}

	cfg := app.Config{
		Store:     env.store,
		Order:     order,
		Windows:   windows,
		Delay:     o.debounce,
		Confirmer: o.confirmer,
		Logger:    o.logger,
	}
	if env.fsStore != nil {
		cfg.DataDir = env.path
	}
	if env.fsStore != nil && (o.watch == nil || *o.watch) {
		cfg.Watcher = env.fsStore
	}

	a, err := app.New(cfg)
	if err != nil {
		if closer, ok := order.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		return nil, err
	}
	return a, nil
}

// OpenStore opens the note store of dataDir without starting the application.
func OpenStore(dataDir string, opts ...Option) (core.Store, error) {
	env, err := prepare(dataDir, parseOptions(opts))
	if err != nil {
		return nil, err
	}
	return env.store, nil
}

func parseOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func prepare(dataDir string, o *options) (*environment, error) {
	env := &environment{}

	if o.ephemeral {
		env.store = o.store
		if env.store == nil {
			env.store = memory.NewStore()
		}
		return env, nil
	}

	useTemp := o.forceTemp || (IsDevRun() && o.devSafety)
	env.path = ResolveDataDir(dataDir, useTemp)

	if IsDevRun() && o.logger != nil {
		if o.devSafety {
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", env.path)
		} else {
			o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", env.path)
		}
	}
	if o.logger != nil && useTemp {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", dataDir, "resolved_path", env.path)
	}

	cfg, err := LoadConfig(env.path)
	if err != nil {
		return nil, err
	}
	cfg.apply(o)

	if o.store != nil {
		env.store = o.store
		return env, nil
	}

	store := fs.NewStore(fs.Config{
		Path:          env.path,
		MustExist:     o.mustExist,
		PreviewLength: o.previewLength,
		Logger:        component(o.logger, "store"),
	})
	if err := store.Initialize(context.Background()); err != nil {
		return nil, fmt.Errorf("initialize data directory: %w", err)
	}
	env.store = store
	env.fsStore = store
	return env, nil
}

func component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With("component", name)
}
