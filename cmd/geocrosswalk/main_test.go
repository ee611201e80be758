package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/geocrosswalk/config"
	"github.com/c360studio/geocrosswalk/export"
)

// l4sPath is resolved before any test changes the working directory.
var l4sPath, _ = filepath.Abs("../../source/croissant/testdata/l4s.json")

// fixture returns the absolute path of the L4S GeoCroissant fixture.
func fixture(t *testing.T) string {
	t.Helper()
	require.FileExists(t, l4sPath)
	return l4sPath
}

// isolate points HOME and the working directory at empty temp dirs so no
// user or project config leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "geocrosswalk version "+Version)
}

func TestFormats(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "formats")
	require.NoError(t, err)
	for _, want := range []string{"SOURCES", "EXPORTERS", "croissant", "stac-item", "umm-g", "geodcat-turtle", "text/turtle", "tdml"} {
		assert.Contains(t, out, want)
	}
}

func TestConvert_ToDirectory(t *testing.T) {
	isolate(t)
	in := fixture(t)
	outDir := filepath.Join(t.TempDir(), "out")

	out, err := run(t, "", "convert", in, "-t", "croissant,stac-item", "-o", outDir)
	require.NoError(t, err)

	want := []string{
		filepath.Join(outDir, "l4s.croissant.json"),
		filepath.Join(outDir, "l4s.stac-item.json"),
	}
	assert.Equal(t, strings.Join(want, "\n")+"\n", out)
	for _, p := range want {
		body, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Contains(t, string(body), "TGRS.2022.3215209")
	}

	// A second run refuses to replace the documents.
	_, err = run(t, "", "convert", in, "-t", "croissant", "-o", outDir)
	assert.ErrorIs(t, err, ErrOutputExists)

	_, err = run(t, "", "convert", in, "-t", "croissant", "-o", outDir, "--overwrite")
	assert.NoError(t, err)
}

func TestConvert_Stdout(t *testing.T) {
	isolate(t)
	raw, err := os.ReadFile(fixture(t))
	require.NoError(t, err)

	out, err := run(t, string(raw), "convert", "-", "--to", "stac-item", "--out=-")
	require.NoError(t, err)
	assert.Contains(t, out, `"Feature"`)
	assert.Contains(t, out, "TGRS.2022.3215209")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestConvert_Profile(t *testing.T) {
	isolate(t)
	in := fixture(t)

	full, err := run(t, "", "convert", in, "-t", "geodcat-turtle", "--out=-")
	require.NoError(t, err)
	core, err := run(t, "", "convert", in, "-t", "geodcat-turtle", "--profile", "core", "--out=-")
	require.NoError(t, err)

	assert.Contains(t, core, "dcat:Dataset")
	assert.Less(t, len(core), len(full))

	_, err = run(t, "", "convert", in, "--profile", "dcat-3", "--out=-")
	assert.Error(t, err)
}

func TestConvert_Failures(t *testing.T) {
	isolate(t)
	in := fixture(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing input", []string{"convert", filepath.Join(t.TempDir(), "nope.json")}},
		{"unknown exporter", []string{"convert", in, "-t", "dcat-3", "--out=-"}},
		{"unknown schema", []string{"convert", in, "-f", "iso19115", "--out=-"}},
		{"wrong schema", []string{"convert", in, "-f", "umm-g", "--out=-"}},
		{"publish without nats", []string{"convert", in, "--publish", "--out=-"}},
		{"no arguments", []string{"convert"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestBatch(t *testing.T) {
	isolate(t)
	raw, err := os.ReadFile(fixture(t))
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "l4s.json"), raw, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"@type": "sc:Dataset"`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not metadata"), 0644))
	outDir := filepath.Join(t.TempDir(), "out")

	out, err := run(t, "", "batch", dir, "-o", outDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 documents failed")
	assert.Contains(t, out, "FAIL "+filepath.Join(dir, "broken.json"))
	assert.Contains(t, out, "ok   "+filepath.Join(dir, "nested", "l4s.json"))
	assert.Contains(t, out, "converted 1 of 2 documents")
	assert.Contains(t, out, "  croissant: 1")
	assert.FileExists(t, filepath.Join(outDir, "l4s.croissant.json"))

	out, err = run(t, "", "batch", dir, "-o", outDir, "--pattern", "*.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "no documents match")
}

func TestConfigShow(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ProjectConfigFile),
		[]byte("crosswalk:\n  exporters: [stac-item]\n"), 0644))

	out, err := run(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "- stac-item")
	assert.Contains(t, out, "schema: auto")
}

func TestConfigInit(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "config", "init")
	require.NoError(t, err)
	path := strings.TrimSpace(out)
	assert.FileExists(t, path)
	assert.True(t, strings.HasSuffix(path, filepath.Join(config.UserConfigDir, config.UserConfigFile)))
}

func TestBadLogLevel(t *testing.T) {
	isolate(t)
	_, err := run(t, "", "version", "--log-level", "trace")
	assert.Error(t, err)
}

func TestOutputName(t *testing.T) {
	doc := export.Document{Exporter: "geodcat-turtle", Extension: ".ttl"}
	assert.Equal(t, "scene.geodcat-turtle.ttl", OutputName("/data/scene.json", doc))
	assert.Equal(t, "stdin.geodcat-turtle.ttl", OutputName("-", doc))
}

func TestApp_Watch(t *testing.T) {
	isolate(t)
	raw, err := os.ReadFile(fixture(t))
	require.NoError(t, err)

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Export.OutputDir = filepath.Join(dir, "out")
	cfg.Batch.Debounce = 50 * time.Millisecond
	app, err := NewApp(context.Background(), cfg, discardLogger(), AppOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- app.Watch(ctx, dir, &out) }()

	target := filepath.Join(cfg.Export.OutputDir, "l4s.croissant.json")
	// Give the watcher time to add its watches.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "l4s.json"), raw, 0644))
	require.Eventually(t, func() bool {
		_, err := os.Stat(target)
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.Contains(t, out.String(), "ok   l4s.json")
	assert.True(t, app.wrote(target))
}

func TestMetricsEndpoint(t *testing.T) {
	isolate(t)
	raw, err := os.ReadFile(fixture(t))
	require.NoError(t, err)

	app, err := NewApp(context.Background(), config.DefaultConfig(), discardLogger(), AppOptions{})
	require.NoError(t, err)
	_, err = app.Convert(context.Background(), "l4s.json", raw)
	require.NoError(t, err)

	srv := httptest.NewServer(metricsMux(app))
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "geocrosswalk_runs_total")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
