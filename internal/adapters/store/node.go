package store

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/reload/internal/adapters/logger"
	"go.trai.ch/reload/internal/core/ports"
)

// NodeID is the unique identifier for the state store opener Graft node.
const NodeID graft.ID = "adapter.state_store"

func init() {
	graft.Register(graft.Node[ports.StateStoreOpener]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.StateStoreOpener, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewOpener(log), nil
		},
	})
}
