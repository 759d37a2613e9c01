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

	"github.com/JonMunkholm/equipviz/internal/core"
)

type recordingIngester struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingIngester) IngestFile(_ context.Context, path string) (*core.AggregateSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, filepath.Base(path))
	return &core.AggregateSummary{UnitCount: 1}, nil
}

func (r *recordingIngester) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func startWatcher(t *testing.T, ing Ingester) (string, *Watcher) {
	t.Helper()

	dir := t.TempDir()
	w, err := New(dir, 30*time.Millisecond, ing)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	return dir, w
}

func TestWatcher_IngestsDroppedFiles(t *testing.T) {
	ing := &recordingIngester{}
	dir, _ := startWatcher(t, ing)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "plant.csv"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.csv"), []byte("x"), 0o644))

	require.Eventually(t, func() bool { return len(ing.seen()) == 1 }, 2*time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"plant.csv"}, ing.seen())
}

func TestWatcher_DebouncesRapidWrites(t *testing.T) {
	ing := &recordingIngester{}
	dir, _ := startWatcher(t, ing)

	path := filepath.Join(dir, "burst.csv")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
	}

	require.Eventually(t, func() bool { return len(ing.seen()) >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, []string{"burst.csv"}, ing.seen())
}

func TestWatcher_OnIngestCallback(t *testing.T) {
	ing := &recordingIngester{}
	dir := t.TempDir()
	w, err := New(dir, 10*time.Millisecond, ing)
	require.NoError(t, err)

	got := make(chan string, 1)
	w.OnIngest = func(path string, summary *core.AggregateSummary, err error) {
		assert.NoError(t, err)
		assert.Equal(t, 1, summary.UnitCount)
		got <- filepath.Base(path)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "cb.xlsx"), []byte("x"), 0o644))
	select {
	case name := <-got:
		assert.Equal(t, "cb.xlsx", name)
	case <-time.After(2 * time.Second):
		t.Fatal("OnIngest not called")
	}
}

func TestNew_RejectsMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"), 0, &recordingIngester{})
	assert.Error(t, err)
}

func TestAccepts(t *testing.T) {
	tests := map[string]bool{
		"plant.csv":         true,
		"/drop/PLANT.XLSX":  true,
		"~$plant.xlsx":      false,
		".plant.csv.swp":    false,
		"plant.csv.partial": false,
		"plant.txt":         false,
	}
	for name, want := range tests {
		assert.Equal(t, want, accepts(name), name)
	}
}
