package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changes struct {
	mu    sync.Mutex
	paths []string
	ch    chan string
}

func (c *changes) record(p string) {
	c.mu.Lock()
	c.paths = append(c.paths, p)
	c.mu.Unlock()
	c.ch <- p
}

func start(t *testing.T) (*Watcher, *changes) {
	t.Helper()
	c := &changes{ch: make(chan string, 16)}
	w, err := New(20*time.Millisecond, c.record, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w, c
}

func TestWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "a.html")
	other := filepath.Join(dir, "b.html")
	require.NoError(t, os.WriteFile(doc, []byte("1"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("1"), 0o644))

	w, c := start(t)
	require.NoError(t, w.Add(doc))

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(doc, []byte{byte('a' + i)}, 0o644))
	}
	require.NoError(t, os.WriteFile(other, []byte("2"), 0o644))

	select {
	case p := <-c.ch:
		assert.Equal(t, doc, p)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
	select {
	case p := <-c.ch:
		t.Fatalf("unexpected second change %s", p)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherSync(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.html")
	b := filepath.Join(dir, "sub", "b.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(b), 0o755))

	w, _ := start(t)
	require.NoError(t, w.Sync([]string{a, b}))
	assert.Equal(t, []string{a, b}, w.Watched())

	require.NoError(t, w.Sync([]string{b}))
	assert.Equal(t, []string{b}, w.Watched())
	assert.Len(t, w.dirs, 1)

	w.Remove(b)
	assert.Empty(t, w.Watched())
	assert.Empty(t, w.dirs)
}
