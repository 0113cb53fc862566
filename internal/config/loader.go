package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default rules file name.
const DefaultConfigFile = ".nbscan"

// ErrConfigNotFound is returned when the rules file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the on-disk rules file.
// Every field is optional; zero values fall back to the built-in defaults,
// and CLI flags override anything set here.
type File struct {
	// Output overrides the URL list path.
	Output string `yaml:"output"`

	// Markers replaces the loader-call markers.
	Markers []string `yaml:"markers"`

	// KeepCorrupt reports corrupt files without deleting them.
	KeepCorrupt bool `yaml:"keep_corrupt"`
}

// LoadConfigFile loads extraction rules from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers should
// handle this error appropriately based on whether the path was explicitly
// specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// Apply merges the file's settings into cfg.
// Only set fields override; unset fields leave cfg untouched, so flag
// values survive an empty rules file.
func (f *File) Apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Output != "" {
		cfg.OutputFile = f.Output
	}
	if len(f.Markers) > 0 {
		cfg.Markers = f.Markers
	}
	if f.KeepCorrupt {
		cfg.KeepCorrupt = true
	}
}

// FindConfigFile searches for the rules file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .nbscan in the current directory
// 3. Look for .nbscan in the user's home directory
//
// Returns the path to the rules file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
