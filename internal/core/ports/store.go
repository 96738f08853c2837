package ports

import (
	"context"

	"go.trai.ch/reload/internal/core/domain"
)

// StateStore persists the single scan state record.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type StateStore interface {
	// Load returns the persisted state, or an empty state if none was saved yet.
	Load(ctx context.Context) (*domain.ScanState, error)

	// Save replaces the persisted state.
	Save(ctx context.Context, state *domain.ScanState) error

	// Close releases the underlying resources.
	Close() error
}

// StateStoreOpener opens the store selected by the configuration.
type StateStoreOpener interface {
	Open(cfg domain.StateConfig) (StateStore, error)
}
