package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/reload/internal/adapters/logger"
	"go.trai.ch/reload/internal/core/ports"
)

const (
	// EnumeratorNodeID is the unique identifier for the source enumerator Graft node.
	EnumeratorNodeID graft.ID = "adapter.fs.enumerator"
	// HasherNodeID is the unique identifier for the content hasher Graft node.
	HasherNodeID graft.ID = "adapter.fs.hasher"
)

func init() {
	graft.Register(graft.Node[ports.SourceEnumerator]{
		ID:        EnumeratorNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.SourceEnumerator, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewEnumerator(NewWalker(), log), nil
		},
	})

	graft.Register(graft.Node[ports.ContentHasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ContentHasher, error) {
			return NewHasher(), nil
		},
	})
}
