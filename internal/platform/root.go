package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppName names the per-user data directory.
const AppName = "stickies"

// FindRoot looks upwards from startDir for a data directory indicator: a
// stickies.yaml config file or a session.db database. It returns the absolute path
// of the first directory holding one.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ConfigFileName) || hasFile(dir, SessionFileName) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("root not found")
}

// DefaultDataDir returns the per-user data directory (e.g. ~/.config/stickies).
func DefaultDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("no user config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
