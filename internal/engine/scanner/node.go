package scanner

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/reload/internal/adapters/fs"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/reload/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/reload/internal/adapters/source" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/reload/internal/core/ports"
)

// NodeID is the unique identifier for the scanner Graft node.
const NodeID graft.ID = "engine.scanner"

func init() {
	graft.Register(graft.Node[*Scanner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.EnumeratorNodeID,
			fs.HasherNodeID,
			source.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Scanner, error) {
			enumerator, err := graft.Dep[ports.SourceEnumerator](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.ContentHasher](ctx)
			if err != nil {
				return nil, err
			}

			reader, err := graft.Dep[ports.SourceReader](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(enumerator, reader, hasher, log), nil
		},
	})
}
