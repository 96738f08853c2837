package store_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/reload/internal/adapters/store"
	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/reload/internal/core/ports"
	"go.trai.ch/reload/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func id(s string) domain.InternedString {
	return domain.NewInternedString(s)
}

func sampleState() *domain.ScanState {
	s := domain.NewScanState()
	s.Watermark = 1234
	s.Sources[id("units.yaml")] = domain.Source{
		ID:           id("units.yaml"),
		LastModified: 1000,
		Digest:       42,
		Declarations: map[domain.InternedString]domain.Declaration{
			id("api"): {Dependencies: []domain.InternedString{id("db")}, Kind: domain.KindStateful},
			id("db"):  {Kind: domain.KindModule},
		},
	}
	s.Units = domain.MergeUnits(s.Sources)
	s.Loaded.Add(id("db"))
	s.PendingUnload = []domain.InternedString{id("api")}
	s.PendingLoad = []domain.InternedString{id("api")}
	s.Carried[id("api")] = domain.CarriedState{"port": "8080"}
	return s
}

func assertRoundTrip(t *testing.T, s ports.StateStore) {
	t.Helper()
	ctx := context.Background()

	empty, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Sources)
	assert.NotNil(t, empty.Loaded)

	want := sampleState()
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.Watermark, got.Watermark)
	assert.Equal(t, want.Sources, got.Sources)
	assert.Equal(t, want.Units, got.Units)
	assert.Equal(t, want.Loaded, got.Loaded)
	assert.Equal(t, want.PendingUnload, got.PendingUnload)
	assert.Equal(t, want.PendingLoad, got.PendingLoad)
	assert.Equal(t, want.Carried, got.Carried)
	assert.NotNil(t, got.Broken)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".reload", "state.json")
	s := store.NewFileStore(path)
	t.Cleanup(func() { _ = s.Close() })

	assertRoundTrip(t, s)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestFileStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, store.NewFileStore(path).Save(context.Background(), sampleState()))

	got, err := store.NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1234), got.Watermark)
}

func TestFileStore_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, nil, domain.FilePerm))

	got, err := store.NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.Units)
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), domain.FilePerm))

	_, err := store.NewFileStore(path).Load(context.Background())
	require.ErrorIs(t, err, domain.ErrStateRead)

	var syntaxErr *json.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}

func TestFileStore_SaveFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	// A directory in place of the state file makes the final rename fail.
	require.NoError(t, os.MkdirAll(filepath.Join(path, "occupied"), domain.DirPerm))

	err := store.NewFileStore(path).Save(context.Background(), sampleState())
	require.ErrorIs(t, err, domain.ErrStateWrite)
}

func TestBadgerStore_RoundTrip(t *testing.T) {
	s, err := store.OpenBadgerInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assertRoundTrip(t, s)
}

func TestOpener_Open(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	opener := store.NewOpener(log)
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		s, err := opener.Open(domain.StateConfig{Backend: domain.StateBackendJSON, Path: filepath.Join(dir, "s.json")})
		require.NoError(t, err)
		assert.IsType(t, &store.FileStore{}, s)
		require.NoError(t, s.Close())
	})

	t.Run("badger", func(t *testing.T) {
		s, err := opener.Open(domain.StateConfig{Backend: domain.StateBackendBadger, Path: filepath.Join(dir, "db")})
		require.NoError(t, err)
		assert.IsType(t, &store.BadgerStore{}, s)
		require.NoError(t, s.Save(context.Background(), sampleState()))
		require.NoError(t, s.Close())

		reopened, err := opener.Open(domain.StateConfig{Backend: domain.StateBackendBadger, Path: filepath.Join(dir, "db")})
		require.NoError(t, err)
		defer reopened.Close() //nolint:errcheck // Test cleanup

		got, err := reopened.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(1234), got.Watermark)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := opener.Open(domain.StateConfig{Backend: "sqlite"})
		require.ErrorIs(t, err, domain.ErrUnknownStateBackend)
	})
}
