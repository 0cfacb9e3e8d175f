package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"safetyhub/domain/core"
	"safetyhub/internal/testkit"
	"safetyhub/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type importOutcome struct {
	result *ports.IngestResult
	err    error
}

func TestWatchReimportsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Incidents.csv")
	require.NoError(t, os.WriteFile(path, []byte("site,injuries\nA,1\n"), 0o644))

	store := testkit.NewMemoryStore()
	ing := NewIngester(store, nil, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	outcomes := make(chan importOutcome, 4)
	done := make(chan error, 1)
	go func() {
		done <- ing.Watch(ctx, path, 50*time.Millisecond, func(r *ports.IngestResult, err error) {
			outcomes <- importOutcome{r, err}
		})
	}()

	// give the watcher time to register the directory
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("site,injuries\nA,1\nB,4\n"), 0o644))

	select {
	case got := <-outcomes:
		require.NoError(t, got.err)
		require.Len(t, got.result.Sheets, 1)
		assert.Equal(t, 2, got.result.Sheets[0].Records)
	case <-time.After(5 * time.Second):
		t.Fatal("no import after the file was written")
	}

	records, err := store.Stream(context.Background(), "Incidents")
	require.NoError(t, err)
	assert.Equal(t, 2, records.NumRows())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchRejectsUnsupportedFile(t *testing.T) {
	ing := NewIngester(testkit.NewMemoryStore(), nil, "")
	err := ing.Watch(context.Background(), "notes.txt", time.Millisecond, func(*ports.IngestResult, error) {})
	assert.True(t, core.IsConfigurationError(err))
}
