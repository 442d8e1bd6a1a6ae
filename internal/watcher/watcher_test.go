package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cuepointapp/cuepoint-server/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, dir string) *Watcher {
	t.Helper()
	w, err := New(logger.Discard(), Options{
		Suffixes:    []string{"_captions.srt"},
		SettleDelay: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	require.NoError(t, w.Watch(dir))

	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx) //nolint:errcheck // Test goroutine
	t.Cleanup(func() {
		cancel()
		w.Stop() //nolint:errcheck // Test cleanup
	})
	return w
}

func nextEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case event := <-w.Events():
		return event
	case err := <-w.Errors():
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}
	return Event{}
}

func TestNew_Stop(t *testing.T) {
	w, err := New(logger.Discard(), Options{})
	require.NoError(t, err)

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop(), "Stop is idempotent")
}

func TestWatcher_Watch_MissingDir(t *testing.T) {
	w, err := New(logger.Discard(), Options{})
	require.NoError(t, err)
	defer w.Stop() //nolint:errcheck // Test cleanup

	assert.Error(t, w.Watch(filepath.Join(t.TempDir(), "missing")))
}

func TestWatcher_CaptionsAdded(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	// Descriptions are not watched; only caption files trigger events.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc_description.txt"), []byte("desc"), 0o644))
	path := filepath.Join(dir, "abc_captions.srt")
	require.NoError(t, os.WriteFile(path, []byte("1\n00:00:01,000 --> 00:00:02,000\nhi\n"), 0o644))

	event := nextEvent(t, w)
	assert.Equal(t, EventAdded, event.Type)
	assert.Equal(t, path, event.Path)
	assert.Positive(t, event.Size)
}

func TestWatcher_ExistingFileModified(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "abc_captions.srt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	w := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(path, []byte("new content"), 0o644))

	event := nextEvent(t, w)
	assert.Equal(t, EventModified, event.Type)
	assert.Equal(t, path, event.Path)
}

func TestWatcher_Removed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "abc_captions.srt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	w := startWatcher(t, dir)
	require.NoError(t, os.Remove(path))

	event := nextEvent(t, w)
	assert.Equal(t, EventRemoved, event.Type)
	assert.Equal(t, path, event.Path)
}
