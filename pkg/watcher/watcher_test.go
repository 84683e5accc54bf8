package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/philipparndt/gocalib/pkg/sched"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncesChanges(t *testing.T) {
	fw, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Close()

	clock := sched.NewFake(time.Now())
	fw.SetScheduler(clock)

	path := filepath.Join(t.TempDir(), "points.json")
	var calls atomic.Int32
	require.NoError(t, fw.Watch([]string{path}, func(string) { calls.Add(1) }))

	abs, _ := filepath.Abs(path)
	fw.handleFileChange(abs)
	fw.handleFileChange(abs)
	fw.handleFileChange(filepath.Join(filepath.Dir(abs), "other.json"))

	clock.Advance(99 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
	clock.Advance(time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSeesAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))

	fw, err := NewFileWatcher(10*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Close()

	changed := make(chan string, 4)
	require.NoError(t, fw.Watch([]string{path}, func(p string) { changed <- p }))
	fw.Start()

	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(`[{"x":1,"y":2}]`), 0644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case got := <-changed:
		abs, _ := filepath.Abs(path)
		assert.Equal(t, abs, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestRemoveAll(t *testing.T) {
	fw, err := NewFileWatcher(time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Close()

	path := filepath.Join(t.TempDir(), "points.json")
	require.NoError(t, fw.Watch([]string{path}, func(string) {}))
	require.NoError(t, fw.RemoveAll())
	assert.Empty(t, fw.callbacks)
}
