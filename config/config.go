// Package config provides configuration loading and management for
// geocrosswalk.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/geocrosswalk/export"
	"github.com/c360studio/geocrosswalk/instrument"
)

// Config represents the complete geocrosswalk configuration
type Config struct {
	Crosswalk CrosswalkConfig `yaml:"crosswalk"`
	Export    ExportConfig    `yaml:"export"`
	Batch     BatchConfig     `yaml:"batch"`
	NATS      NATSConfig      `yaml:"nats"`
	Logging   LoggingConfig   `yaml:"logging"`

	// Instruments extend or replace the built-in instrument tables.
	Instruments []*instrument.Table `yaml:"instruments,omitempty"`
}

// CrosswalkConfig selects the adapter and exporters of a run
type CrosswalkConfig struct {
	// Schema is the input adapter name, or "auto" to detect it
	Schema string `yaml:"schema"`
	// Exporters are the output formats written for every input
	Exporters []string `yaml:"exporters"`
}

// ExportConfig configures where and how documents are written
type ExportConfig struct {
	// OutputDir receives one file per input and exporter
	OutputDir string `yaml:"output_dir"`
	// Profile limits what graph exports carry (core, geo, full)
	Profile string `yaml:"profile"`
	// Overwrite allows replacing existing output files
	Overwrite bool `yaml:"overwrite"`
}

// BatchConfig configures batch and watch runs
type BatchConfig struct {
	// Concurrency bounds the runs in flight
	Concurrency int `yaml:"concurrency"`
	// Pattern selects input files below a directory (doublestar syntax)
	Pattern string `yaml:"pattern"`
	// Debounce delays reconversion after a file changes
	Debounce time.Duration `yaml:"debounce"`
}

// NATSConfig configures publishing records to the knowledge graph
type NATSConfig struct {
	// URL is the NATS server URL (empty = do not publish)
	URL string `yaml:"url"`
	// Stream is the JetStream stream holding graph ingestion messages
	Stream string `yaml:"stream"`
}

// LoggingConfig configures the process logger
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
	// Format is text or json
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Crosswalk: CrosswalkConfig{
			Schema:    "auto",
			Exporters: []string{"croissant"},
		},
		Export: ExportConfig{
			OutputDir: ".",
			Profile:   string(export.ProfileFull),
		},
		Batch: BatchConfig{
			Concurrency: 4,
			Pattern:     "**/*.json",
			Debounce:    500 * time.Millisecond,
		},
		NATS: NATSConfig{
			URL:    "", // Publishing disabled
			Stream: "GRAPH_INGEST",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Crosswalk.Schema == "" {
		return fmt.Errorf("crosswalk.schema is required")
	}
	if len(c.Crosswalk.Exporters) == 0 {
		return fmt.Errorf("crosswalk.exporters must name at least one exporter")
	}
	if _, ok := export.Profiles[export.Profile(c.Export.Profile)]; !ok {
		return fmt.Errorf("export.profile %q is not one of core, geo, full", c.Export.Profile)
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch.concurrency must be at least 1")
	}
	if !doublestar.ValidatePattern(c.Batch.Pattern) {
		return fmt.Errorf("batch.pattern %q is not a valid glob", c.Batch.Pattern)
	}
	if c.Batch.Debounce < 0 {
		return fmt.Errorf("batch.debounce must not be negative")
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be text or json")
	}
	for _, t := range c.Instruments {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Catalog returns the built-in instrument tables with the configured ones
// registered over them.
func (c *Config) Catalog() *instrument.Catalog {
	cat := instrument.NewDefaultCatalog()
	for _, t := range c.Instruments {
		cat.Register(t)
	}
	return cat
}

// ParseLevel maps a level name to its slog level
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", level)
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Crosswalk
	if other.Crosswalk.Schema != "" {
		c.Crosswalk.Schema = other.Crosswalk.Schema
	}
	if len(other.Crosswalk.Exporters) > 0 {
		c.Crosswalk.Exporters = other.Crosswalk.Exporters
	}

	// Export
	if other.Export.OutputDir != "" {
		c.Export.OutputDir = other.Export.OutputDir
	}
	if other.Export.Profile != "" {
		c.Export.Profile = other.Export.Profile
	}
	if other.Export.Overwrite {
		c.Export.Overwrite = true
	}

	// Batch
	if other.Batch.Concurrency != 0 {
		c.Batch.Concurrency = other.Batch.Concurrency
	}
	if other.Batch.Pattern != "" {
		c.Batch.Pattern = other.Batch.Pattern
	}
	if other.Batch.Debounce != 0 {
		c.Batch.Debounce = other.Batch.Debounce
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Stream != "" {
		c.NATS.Stream = other.NATS.Stream
	}

	// Logging
	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.Format != "" {
		c.Logging.Format = other.Logging.Format
	}

	// Instruments accumulate; a later table with the same ID wins in Catalog
	c.Instruments = append(c.Instruments, other.Instruments...)
}
