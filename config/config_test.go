package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/geocrosswalk/instrument"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "auto", cfg.Crosswalk.Schema)
	assert.Equal(t, []string{"croissant"}, cfg.Crosswalk.Exporters)
	assert.Equal(t, "full", cfg.Export.Profile)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.Equal(t, 500*time.Millisecond, cfg.Batch.Debounce)
	assert.Empty(t, cfg.NATS.URL)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid default config", func(c *Config) {}, false},
		{"missing schema", func(c *Config) { c.Crosswalk.Schema = "" }, true},
		{"no exporters", func(c *Config) { c.Crosswalk.Exporters = nil }, true},
		{"unknown profile", func(c *Config) { c.Export.Profile = "dcat-3" }, true},
		{"core profile", func(c *Config) { c.Export.Profile = "core" }, false},
		{"zero concurrency", func(c *Config) { c.Batch.Concurrency = 0 }, true},
		{"bad pattern", func(c *Config) { c.Batch.Pattern = "[a-" }, true},
		{"negative debounce", func(c *Config) { c.Batch.Debounce = -time.Second }, true},
		{"unknown level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"json format", func(c *Config) { c.Logging.Format = "json" }, false},
		{"unknown format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"instrument without id", func(c *Config) { c.Instruments = []*instrument.Table{{Platform: "Landsat-9"}} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	lvl, err = ParseLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	_, err = ParseLevel("trace")
	assert.Error(t, err)
}

const landsat = `
crosswalk:
  schema: stac-item
  exporters: [croissant, geodcat-turtle]
batch:
  concurrency: 8
  debounce: 2s
instruments:
  - id: landsat-9-oli
    platform: Landsat-9
    instrument: OLI-2
    aliases: [OLI-2]
    channels:
      - {id: SR_B4, description: Red, center: 655, bandwidth: 37, unit: nm}
      - {id: SR_B5, description: NIR, center: 865, bandwidth: 28, unit: nm}
`

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(landsat), 0644))

	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)

	assert.Equal(t, "stac-item", cfg.Crosswalk.Schema)
	assert.Equal(t, []string{"croissant", "geodcat-turtle"}, cfg.Crosswalk.Exporters)
	assert.Equal(t, 8, cfg.Batch.Concurrency)
	assert.Equal(t, 2*time.Second, cfg.Batch.Debounce)
	// Defaults are kept for unset fields.
	assert.Equal(t, "**/*.json", cfg.Batch.Pattern)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.Len(t, cfg.Instruments, 1)
	assert.NoError(t, cfg.Validate())

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFromFile_Malformed(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("crosswalk: [unclosed"), 0644))
	_, err := LoadFromFile(configPath)
	assert.Error(t, err)
}

func TestConfigCatalog(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(landsat), 0644))
	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)

	cat := cfg.Catalog()
	table, ok := cat.Resolve("Landsat-9", "OLI-2")
	require.True(t, ok)
	assert.Equal(t, "landsat-9-oli", table.ID)
	_, ok = cat.Get("sentinel-2-msi")
	assert.True(t, ok, "built-in tables stay registered")
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	other := &Config{
		Crosswalk: CrosswalkConfig{Exporters: []string{"stac-item"}},
		Export:    ExportConfig{OutputDir: "out", Overwrite: true},
		NATS:      NATSConfig{URL: "nats://localhost:4222"},
		Logging:   LoggingConfig{Level: "debug"},
	}
	base.Merge(other)

	assert.Equal(t, "auto", base.Crosswalk.Schema)
	assert.Equal(t, []string{"stac-item"}, base.Crosswalk.Exporters)
	assert.Equal(t, "out", base.Export.OutputDir)
	assert.True(t, base.Export.Overwrite)
	assert.Equal(t, "full", base.Export.Profile)
	assert.Equal(t, "nats://localhost:4222", base.NATS.URL)
	assert.Equal(t, "GRAPH_INGEST", base.NATS.Stream)
	assert.Equal(t, "debug", base.Logging.Level)
	assert.Equal(t, "text", base.Logging.Format)

	base.Merge(nil)
	assert.Equal(t, "out", base.Export.OutputDir)
}

func TestConfigSaveToFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Crosswalk.Exporters = []string{"tdml"}
	cfg.Batch.Debounce = 3 * time.Second
	require.NoError(t, cfg.SaveToFile(configPath))

	loaded, err := LoadFromFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"tdml"}, loaded.Crosswalk.Exporters)
	assert.Equal(t, 3*time.Second, loaded.Batch.Debounce)
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoader_Layers(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	work := filepath.Join(project, "data", "scenes")
	require.NoError(t, os.MkdirAll(work, 0755))

	write(t, filepath.Join(home, UserConfigDir, UserConfigFile), "logging:\n  level: warn\nbatch:\n  concurrency: 2\n")
	write(t, filepath.Join(project, ProjectConfigFile), "batch:\n  concurrency: 6\nexport:\n  output_dir: build\n")
	explicit := filepath.Join(t.TempDir(), "ci.yaml")
	write(t, explicit, "export:\n  output_dir: ci-out\n")

	loader := NewLoader(nil).WithDirs(home, work)
	cfg, err := loader.Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 6, cfg.Batch.Concurrency)
	assert.Equal(t, "build", cfg.Export.OutputDir)

	cfg, err = loader.Load(explicit)
	require.NoError(t, err)
	assert.Equal(t, "ci-out", cfg.Export.OutputDir)

	_, err = loader.Load(filepath.Join(home, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoader_Invalid(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, ProjectConfigFile), "batch:\n  concurrency: -1\n")
	_, err := NewLoader(nil).WithDirs(t.TempDir(), dir).Load("")
	assert.ErrorContains(t, err, "batch.concurrency")
}

func TestLoader_EnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	loader := NewLoader(nil).WithDirs(home, t.TempDir())

	path, err := loader.EnsureUserConfig()
	require.NoError(t, err)
	assert.FileExists(t, path)

	// A second call leaves the file alone.
	write(t, path, "logging:\n  level: error\n")
	_, err = loader.EnsureUserConfig()
	require.NoError(t, err)
	cfg, err := loader.Load("")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
}
