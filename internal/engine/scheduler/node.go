package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/reload/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/reload/internal/adapters/metrics"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/reload/internal/adapters/shell"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/reload/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/reload/internal/core/ports"
)

// NodeID is the unique identifier for the executor Graft node.
const NodeID graft.ID = "engine.executor"

func init() {
	graft.Register(graft.Node[*Executor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			shell.LoaderNodeID,
			shell.UnloaderNodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			metrics.NodeID,
		},
		Run: func(ctx context.Context) (*Executor, error) {
			loader, err := graft.Dep[ports.UnitLoader](ctx)
			if err != nil {
				return nil, err
			}

			unloader, err := graft.Dep[ports.UnitUnloader](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			m, err := graft.Dep[ports.Metrics](ctx)
			if err != nil {
				return nil, err
			}

			return NewExecutor(loader, unloader, log, tracer, m), nil
		},
	})
}
