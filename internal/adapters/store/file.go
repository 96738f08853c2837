// Package store persists the scan state, either as a JSON file or in an
// embedded badger database.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/reload/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StateStore = (*FileStore)(nil)

// FileStore implements ports.StateStore using a flat JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the file at path. The file is
// created on the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: filepath.Clean(path)}
}

// Load reads the state. A missing or empty file yields an empty state.
func (s *FileStore) Load(_ context.Context) (*domain.ScanState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.NewScanState(), nil
		}
		return nil, zerr.With(domain.Classify(domain.ErrStateRead, err), "path", s.path)
	}

	if len(data) == 0 {
		return domain.NewScanState(), nil
	}

	var state domain.ScanState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, zerr.With(domain.Classify(domain.ErrStateRead, err), "path", s.path)
	}

	return state.Normalize(), nil
}

// Save writes the state to a temporary file and renames it over the old
// one, so readers never observe a partial write.
func (s *FileStore) Save(_ context.Context, state *domain.ScanState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return domain.Classify(domain.ErrStateWrite, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory for state store"), "dir", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return zerr.With(domain.Classify(domain.ErrStateWrite, err), "path", s.path)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // Gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.With(domain.Classify(domain.ErrStateWrite, err), "path", s.path)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(domain.Classify(domain.ErrStateWrite, err), "path", s.path)
	}
	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return zerr.With(domain.Classify(domain.ErrStateWrite, err), "path", s.path)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return zerr.With(domain.Classify(domain.ErrStateWrite, err), "path", s.path)
	}

	return nil
}

// Close is a no-op; the file is only held open during Load and Save.
func (s *FileStore) Close() error {
	return nil
}
