package source

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/reload/internal/core/ports"
)

// NodeID is the unique identifier for the source reader Graft node.
const NodeID graft.ID = "adapter.source"

func init() {
	graft.Register(graft.Node[ports.SourceReader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.SourceReader, error) {
			return NewDefaultReader(os.Environ()), nil
		},
	})
}
