package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/stickies"
	"github.com/aretw0/stickies/internal/platform"
)

var (
	verbose   bool
	dataDir   string
	logFile   string
	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stickies",
	Short: "Sticky notes that never lose an edit",
	Long: `Stickies keeps one Markdown note per window and a dashboard listing them all.
Edits are saved shortly after you stop typing and always before a window closes.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		dir, err := resolveDataDir()
		if err != nil {
			fatal("Failed to locate data directory", err)
		}
		dataDir = dir

		cfg, err := platform.LoadConfig(stickies.ResolveDataDir(dataDir, stickies.IsDevRun()))
		if err != nil {
			fatal("Failed to read config", err)
		}
		file := cfg.Log.File
		if logFile != "" {
			file = logFile
		}

		logger, closer, err := platform.NewLogger(os.Stderr, platform.LogOptions{
			Verbose: verbose,
			Level:   cfg.Log.Level,
			File:    file,
		})
		if err != nil {
			fatal("Failed to configure logging", err)
		}
		logCloser = closer
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if logCloser != nil {
		_ = logCloser.Close()
	}
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// resolveDataDir picks --data, then a data directory above the working
// directory, then the per-user default.
func resolveDataDir() (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	if wd, err := os.Getwd(); err == nil {
		if root, err := stickies.FindDataRoot(wd); err == nil {
			return root, nil
		}
	}
	return stickies.DefaultDataDir()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "", "Data directory (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this rotating file")
}
