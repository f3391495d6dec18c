package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/stickies"
	"github.com/aretw0/stickies/pkg/adapters/headless"
	refresh "github.com/aretw0/stickies/pkg/adapters/lifecycle"
)

var (
	runEphemeral bool
	runDebounce  time.Duration
	runNoWatch   bool
	runTrace     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the notes runtime with an interactive shell",
	Long: `Run starts the full runtime (editor sessions, dashboard, refresh bus, session
restore) with headless windows driven from an interactive shell. Type "help" for
the list of commands.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		logger := slog.Default()
		windows := headless.NewManager(headless.WithLogger(logger.With("component", "windows")))
		sh := newShell(ctx, windows, cmd.InOrStdin(), cmd.OutOrStdout())

		opts := []stickies.Option{
			stickies.WithLogger(logger),
			stickies.WithWindows(windows),
			stickies.WithConfirmer(sh.confirm),
			stickies.WithEphemeral(runEphemeral),
		}
		if runDebounce > 0 {
			opts = append(opts, stickies.WithDebounce(runDebounce))
		}
		if runNoWatch {
			opts = append(opts, stickies.WithWatch(false))
		}

		a, err := stickies.New(dataDir, opts...)
		if err != nil {
			fatal("Failed to initialize stickies", err)
		}
		sh.app = a

		if err := a.Start(ctx); err != nil {
			fatal("Failed to start", err)
		}

		if runTrace {
			if err := sh.traceRefreshes(ctx, refresh.NewSource(a.Bus())); err != nil {
				logger.Warn("refresh trace unavailable", "error", err)
			}
		}

		runErr := sh.run(ctx)

		// Shutdown must flush even after an interrupt.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := a.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown finished with errors", "error", err)
		}
		if runErr != nil {
			fatal("Shell failed", runErr)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runEphemeral, "ephemeral", false, "Keep notes in memory only")
	runCmd.Flags().DurationVar(&runDebounce, "debounce", 0, "Delay between the last keystroke and the save (default 1s)")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "Print every dashboard refresh signal")
	runCmd.Flags().BoolVar(&runNoWatch, "no-watch", false, "Ignore edits made to note files by other programs")
}
