package runlock

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the run lock Graft node.
const NodeID graft.ID = "engine.runlock"

func init() {
	graft.Register(graft.Node[*Lock]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Lock, error) {
			return New(), nil
		},
	})
}
