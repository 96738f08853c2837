package watcher_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/reload/internal/adapters/watcher"
	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/reload/internal/core/ports"
	"go.trai.ch/reload/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// collect forwards every event of w to the returned channel until w stops.
func collect(w ports.Watcher) <-chan ports.WatchEvent {
	ch := make(chan ports.WatchEvent, 64)
	go func() {
		defer close(ch)
		for ev := range w.Events() {
			ch <- ev
		}
	}()
	return ch
}

// waitFor reads events until one mentions path.
func waitFor(t *testing.T, events <-chan ports.WatchEvent, path string) ports.WatchEvent {
	t.Helper()

	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "watcher stopped before %s was reported", path)
			if slices.Contains(ev.Paths, path) {
				return ev
			}
		case <-timeout:
			t.Fatalf("%s was not reported within 5s", path)
		}
	}
}

func newTestWatcher(t *testing.T) ports.Watcher {
	t.Helper()
	log := mocks.NewMockLogger(gomock.NewController(t))
	log.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()

	w, err := watcher.NewFactory(log).NewWatcher(20 * time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func TestWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t)

	require.NoError(t, w.Start(t.Context(), []string{dir, filepath.Join(dir, "missing")}))
	events := collect(w)

	path := filepath.Join(dir, "units.yaml")
	require.NoError(t, os.WriteFile(path, []byte("units: {}\n"), domain.FilePerm))

	waitFor(t, events, path)
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t)

	require.NoError(t, w.Start(t.Context(), []string{dir}))
	events := collect(w)

	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, domain.DirPerm))
	ev := waitFor(t, events, sub)
	assert.Equal(t, ports.OpCreate, ev.Operation)

	path := filepath.Join(sub, "more.yaml")
	require.NoError(t, os.WriteFile(path, []byte("units: {}\n"), domain.FilePerm))

	waitFor(t, events, path)
}

func TestWatcher_SkipsStateDirectory(t *testing.T) {
	dir := t.TempDir()
	stateDir := filepath.Join(dir, domain.ReloadDirName)
	require.NoError(t, os.Mkdir(stateDir, domain.DirPerm))

	w := newTestWatcher(t)
	require.NoError(t, w.Start(t.Context(), []string{dir}))
	events := collect(w)

	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "state.json"), []byte("{}"), domain.FilePerm))
	marker := filepath.Join(dir, "marker.yaml")
	require.NoError(t, os.WriteFile(marker, []byte("units: {}\n"), domain.FilePerm))

	ev := waitFor(t, events, marker)
	assert.NotContains(t, ev.Paths, filepath.Join(stateDir, "state.json"))
}

func TestWatcher_StopEndsEvents(t *testing.T) {
	log := mocks.NewMockLogger(gomock.NewController(t))
	w, err := watcher.NewWatcher(log, 20*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context(), []string{t.TempDir()}))

	require.NoError(t, w.Stop())

	for range w.Events() {
		t.Fatal("no events expected after stop")
	}
}
