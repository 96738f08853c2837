package ports

import (
	"context"
	"iter"
	"time"
)

// WatchOp represents the type of file system operation.
type WatchOp uint8

const (
	// OpCreate indicates a file or directory was created.
	OpCreate WatchOp = iota
	// OpWrite indicates a file was modified.
	OpWrite
	// OpRemove indicates a file or directory was removed.
	OpRemove
	// OpRename indicates a file or directory was renamed.
	OpRename
)

// WatchEvent represents a batch of file system changes reported by the watcher.
type WatchEvent struct {
	// Paths are the absolute paths that changed since the previous event.
	Paths []string
	// Operation is the last operation observed in the batch.
	Operation WatchOp
}

// Watcher defines the interface for watching file system changes.
//
//go:generate go run go.uber.org/mock/mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start begins watching the given directories recursively.
	// It returns an error if the watcher fails to start.
	Start(ctx context.Context, roots []string) error
	// Stop stops the watcher and releases all resources.
	Stop() error
	// Events returns an iterator of debounced change batches.
	Events() iter.Seq[WatchEvent]
}

// WatcherFactory creates watchers on demand so that plain runs never open
// file system notification handles.
type WatcherFactory interface {
	NewWatcher(debounce time.Duration) (Watcher, error)
}
