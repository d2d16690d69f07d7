package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	opts.setDefaults()

	assert.Equal(t, 100*time.Millisecond, opts.SettleDelay)
	assert.NotEmpty(t, opts.IgnorePatterns)
	assert.True(t, opts.IgnoreHidden)
}

func TestOptionsExplicitPatternsRespected(t *testing.T) {
	opts := Options{IgnorePatterns: []string{}}
	opts.setDefaults()

	assert.Empty(t, opts.IgnorePatterns)
	assert.False(t, opts.IgnoreHidden, "explicit patterns keep IgnoreHidden as set")
}

func TestShouldIgnore(t *testing.T) {
	opts := Options{}
	opts.setDefaults()

	tests := []struct {
		path string
		want bool
	}{
		{"/audio/Book/001.mp3", false},
		{"/audio/Book/001.tmp", true},
		{"/audio/Book/incoming.part", true},
		{"/audio/.DS_Store", true},
		{"/audio/.hidden/001.mp3", true},
		{"/audio/Book/.001.mp3.swp", true},
		{"/audio/Thumbs.db", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, opts.shouldIgnore(tt.path), tt.path)
	}
}

func newTestWatcher(t *testing.T, root string) *Watcher {
	t.Helper()

	w, err := New(slog.New(slog.DiscardHandler), Options{SettleDelay: 20 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, w.Watch(root))

	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx)
	t.Cleanup(func() {
		cancel()
		w.Stop()
	})

	return w
}

func waitForEvent(t *testing.T, w *Watcher, want EventType, path string) Event {
	t.Helper()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			if ev.Type == want && ev.Path == path {
				return ev
			}
		case err := <-w.Errors():
			t.Fatalf("watch error: %v", err)
		case <-deadline:
			t.Fatalf("timed out waiting for %s on %s", want, path)
		}
	}
}

func TestWatcherAddAndRemove(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)

	target := filepath.Join(root, "001.mp3")
	require.NoError(t, os.WriteFile(target, []byte("ID3 payload"), 0o644))

	ev := waitForEvent(t, w, EventAdded, target)
	assert.Equal(t, int64(len("ID3 payload")), ev.Size)
	assert.False(t, ev.ModTime.IsZero())

	require.NoError(t, os.Remove(target))
	waitForEvent(t, w, EventRemoved, target)
}

func TestWatcherSeesNewSubdirectory(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)

	bookDir := filepath.Join(root, "NewBook")
	require.NoError(t, os.Mkdir(bookDir, 0o755))

	// Give the watcher a moment to pick up the new directory.
	time.Sleep(100 * time.Millisecond)

	target := filepath.Join(bookDir, "001.mp3")
	require.NoError(t, os.WriteFile(target, []byte("chapter"), 0o644))

	waitForEvent(t, w, EventAdded, target)
}

func TestWatcherIgnoresTempFiles(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "copy.tmp"), []byte("x"), 0o644))
	target := filepath.Join(root, "real.mp3")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	// Only the real file should surface.
	ev := waitForEvent(t, w, EventAdded, target)
	assert.Equal(t, target, ev.Path)
}
