package shell

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/reload/internal/adapters/logger"
	"go.trai.ch/reload/internal/core/ports"
)

const (
	// RunnerNodeID is the unique identifier for the shell runner Graft node.
	RunnerNodeID graft.ID = "adapter.shell"
	// LoaderNodeID exposes the runner as a ports.UnitLoader.
	LoaderNodeID graft.ID = "adapter.shell.loader"
	// UnloaderNodeID exposes the runner as a ports.UnitUnloader.
	UnloaderNodeID graft.ID = "adapter.shell.unloader"
)

func init() {
	graft.Register(graft.Node[*Runner]{
		ID:        RunnerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Runner, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewRunner(log, os.Environ()), nil
		},
	})

	graft.Register(graft.Node[ports.UnitLoader]{
		ID:        LoaderNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{RunnerNodeID},
		Run: func(ctx context.Context) (ports.UnitLoader, error) {
			runner, err := graft.Dep[*Runner](ctx)
			if err != nil {
				return nil, err
			}
			return runner, nil
		},
	})

	graft.Register(graft.Node[ports.UnitUnloader]{
		ID:        UnloaderNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{RunnerNodeID},
		Run: func(ctx context.Context) (ports.UnitUnloader, error) {
			runner, err := graft.Dep[*Runner](ctx)
			if err != nil {
				return nil, err
			}
			return runner, nil
		},
	})
}
