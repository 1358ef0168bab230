package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReloader struct {
	calls atomic.Int32
}

func (c *countingReloader) Reload(context.Context) (uint64, bool) {
	return uint64(c.calls.Add(1)), true
}

func newTestWatcher(t *testing.T) *FileWatcher {
	t.Helper()
	fw, err := NewFileWatcher(50*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { fw.Close() })
	return fw
}

func TestWatchDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "model.stl")
	require.NoError(t, os.WriteFile(file, []byte("solid a\n"), 0o644))

	fw := newTestWatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 10)
	require.NoError(t, fw.Watch([]string{file}, func(f string) { changed <- f }))
	fw.Start(ctx)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(file, []byte("solid b\n"), 0o644))
	}

	select {
	case got := <-changed:
		assert.Equal(t, file, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case <-changed:
		t.Fatal("writes were not debounced")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestIgnoresOtherFilesInDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "model.stl")
	require.NoError(t, os.WriteFile(file, []byte("solid a\n"), 0o644))

	fw := newTestWatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloader := &countingReloader{}
	require.NoError(t, fw.ReloadOnChange(ctx, []string{file}, reloader))
	fw.Start(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), reloader.calls.Load())

	require.NoError(t, os.WriteFile(file, []byte("solid b\n"), 0o644))
	assert.Eventually(t, func() bool { return reloader.calls.Load() == 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestRemoveAll(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "model.scad")
	require.NoError(t, os.WriteFile(file, []byte("cube(1);\n"), 0o644))

	fw := newTestWatcher(t)
	require.NoError(t, fw.Watch([]string{file, file}, func(string) {}))
	assert.Equal(t, 1, fw.dirs[dir])

	require.NoError(t, fw.RemoveAll())
	assert.Empty(t, fw.callbacks)
	assert.Empty(t, fw.dirs)
}
