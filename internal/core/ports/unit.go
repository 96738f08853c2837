package ports

import (
	"context"

	"go.trai.ch/reload/internal/core/domain"
)

// UnitLoader performs the side effect of bringing a unit up.
//
//go:generate go run go.uber.org/mock/mockgen -source=unit.go -destination=mocks/mock_unit.go -package=mocks
type UnitLoader interface {
	// Load brings unit up. carried holds state captured by earlier unloads
	// and is nil when there is none.
	Load(ctx context.Context, unit domain.Unit, carried domain.CarriedState) error
}

// UnitUnloader performs the side effect of tearing a unit down.
type UnitUnloader interface {
	// Unload tears unit down and returns any state worth carrying to the next load.
	Unload(ctx context.Context, unit domain.Unit) (domain.CarriedState, error)
}
