package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the optional config file inside the data directory.
	ConfigFileName = "stickies.yaml"
	// SessionFileName is the session order database inside the data directory.
	SessionFileName = "session.db"
)

// FileConfig mirrors stickies.yaml. Zero values mean "use the default".
type FileConfig struct {
	Debounce      time.Duration `yaml:"debounce"`
	PreviewLength int           `yaml:"preview_length"`
	Watch         *bool         `yaml:"watch"`
	Log           LogConfig     `yaml:"log"`
}

// LogConfig selects the log level and the optional rotating log file.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// LoadConfig reads stickies.yaml from dataDir. A missing file yields an empty config.
func LoadConfig(dataDir string) (FileConfig, error) {
	var cfg FileConfig

	path := filepath.Join(dataDir, ConfigFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}
	if cfg.Debounce < 0 {
		return cfg, fmt.Errorf("invalid %s: negative debounce", ConfigFileName)
	}
	if cfg.Log.File != "" && !filepath.IsAbs(cfg.Log.File) {
		cfg.Log.File = filepath.Join(dataDir, cfg.Log.File)
	}
	return cfg, nil
}

// apply fills every option the caller did not set explicitly.
func (c FileConfig) apply(o *options) {
	if o.debounce <= 0 {
		o.debounce = c.Debounce
	}
	if o.previewLength <= 0 {
		o.previewLength = c.PreviewLength
	}
	if o.watch == nil {
		o.watch = c.Watch
	}
}
