package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func start(t *testing.T, cfg Config) *Watcher {
	t.Helper()
	w, err := New(cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, w.Start(ctx))
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func next(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev, ok := <-w.Events():
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}
	return Event{}
}

func quiet(t *testing.T, w *Watcher, d time.Duration) {
	t.Helper()
	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event for %s", ev.Path)
	case <-time.After(d):
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New(Config{Dir: t.TempDir(), Pattern: "[a-"}, nil)
	assert.Error(t, err)
}

func TestWatcher_ReportsMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	w := start(t, Config{Dir: dir, Pattern: "**/*.json", Debounce: 50 * time.Millisecond})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.json"), []byte(`{"id":"a"}`), 0644))

	ev := next(t, w)
	assert.Equal(t, "scene.json", ev.Path)
	assert.Equal(t, `{"id":"a"}`, string(ev.Content))
}

func TestWatcher_UnchangedContentIsNotReported(t *testing.T) {
	dir := t.TempDir()
	w := start(t, Config{Dir: dir, Pattern: "*.json", Debounce: 50 * time.Millisecond})
	path := filepath.Join(dir, "scene.json")

	require.NoError(t, os.WriteFile(path, []byte(`{"id":"a"}`), 0644))
	next(t, w)

	require.NoError(t, os.WriteFile(path, []byte(`{"id":"a"}`), 0644))
	quiet(t, w, 300*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(`{"id":"b"}`), 0644))
	ev := next(t, w)
	assert.Equal(t, `{"id":"b"}`, string(ev.Content))
}

func TestWatcher_NewDirectories(t *testing.T) {
	dir := t.TempDir()
	w := start(t, Config{Dir: dir, Pattern: "**/*.json", Debounce: 50 * time.Millisecond})

	sub := filepath.Join(dir, "tiles")
	require.NoError(t, os.Mkdir(sub, 0755))
	// Let the watcher pick up the new directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "t1.json"), []byte(`{}`), 0644))

	ev := next(t, w)
	assert.Equal(t, "tiles/t1.json", ev.Path)
}

func TestWatcher_Excludes(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(out, 0755))
	written := filepath.Join(dir, "scene.croissant.json")

	w := start(t, Config{
		Dir:         dir,
		Pattern:     "**/*.json",
		Debounce:    50 * time.Millisecond,
		ExcludeDirs: []string{out, dir},
		Skip:        func(p string) bool { return p == written },
	})

	require.NoError(t, os.WriteFile(filepath.Join(out, "x.json"), []byte(`{}`), 0644))
	require.NoError(t, os.WriteFile(written, []byte(`{}`), 0644))
	quiet(t, w, 300*time.Millisecond)

	// Excluding the root itself is ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kept.json"), []byte(`{}`), 0644))
	assert.Equal(t, "kept.json", next(t, w).Path)
}

func TestWatcher_StopClosesEvents(t *testing.T) {
	w, err := New(Config{Dir: t.TempDir(), Pattern: "*.json"}, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	select {
	case _, ok := <-w.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed")
	}
	assert.NoError(t, w.Stop())
	assert.Zero(t, w.DroppedEvents())
}
