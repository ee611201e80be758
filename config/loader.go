package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "geocrosswalk.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/geocrosswalk"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
	home   string
	dir    string
}

// NewLoader creates a new configuration loader rooted at the user's home
// and the current directory
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	home, _ := os.UserHomeDir()
	dir, _ := os.Getwd()
	return &Loader{logger: logger, home: home, dir: dir}
}

// WithDirs returns a copy of the loader that searches the given home and
// working directories
func (l *Loader) WithDirs(home, dir string) *Loader {
	cp := *l
	cp.home, cp.dir = home, dir
	return &cp
}

// layer is one configuration file in precedence order.
type layer struct {
	name     string
	path     string
	required bool
}

// Load merges, in increasing precedence, the defaults, the user file
// (~/.config/geocrosswalk/config.yaml), the nearest project file
// (geocrosswalk.yaml in the working directory or a parent) and the
// explicit file, if one is given. Only the explicit file must exist; a
// broken optional file is logged and skipped.
func (l *Loader) Load(explicit string) (*Config, error) {
	layers := []layer{
		{name: "user", path: l.userConfigPath()},
		{name: "project", path: l.findProjectConfig()},
	}
	if explicit != "" {
		layers = append(layers, layer{name: "explicit", path: explicit, required: true})
	}

	cfg := DefaultConfig()
	for _, ly := range layers {
		if ly.path == "" {
			l.logger.Debug("No config layer", slog.String("layer", ly.name))
			continue
		}
		overlay, err := loadLayer(ly.path)
		switch {
		case err == nil:
			l.logger.Debug("Loaded config layer", slog.String("layer", ly.name), slog.String("path", ly.path))
			cfg.Merge(overlay)
		case ly.required:
			return nil, err
		case errors.Is(err, os.ErrNotExist):
			// Optional layers may be absent.
		default:
			l.logger.Warn("Skipping config layer",
				slog.String("layer", ly.name),
				slog.String("path", ly.path),
				slog.String("error", err.Error()))
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// EnsureUserConfig creates the user config file with defaults if it doesn't exist
func (l *Loader) EnsureUserConfig() (string, error) {
	userConfigPath := l.userConfigPath()
	if userConfigPath == "" {
		return "", fmt.Errorf("no home directory")
	}

	// Check if it already exists
	if _, err := os.Stat(userConfigPath); err == nil {
		return userConfigPath, nil // Already exists
	}

	// Create default config
	config := DefaultConfig()
	if err := config.SaveToFile(userConfigPath); err != nil {
		return "", err
	}

	l.logger.Info("Created default user config", slog.String("path", userConfigPath))
	return userConfigPath, nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	if l.home == "" {
		return ""
	}
	return filepath.Join(l.home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for geocrosswalk.yaml in current and parent directories
func (l *Loader) findProjectConfig() string {
	if l.dir == "" {
		return ""
	}

	dir := l.dir
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return ""
}

// loadLayer reads a config file without defaults so that only the fields
// it sets override earlier layers
func loadLayer(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}
