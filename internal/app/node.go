package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/reload/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/reload/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/reload/internal/adapters/metrics" //nolint:depguard // Wired in app layer
	"go.trai.ch/reload/internal/adapters/store"   //nolint:depguard // Wired in app layer
	"go.trai.ch/reload/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/reload/internal/core/ports"
	"go.trai.ch/reload/internal/engine/resolver"
	"go.trai.ch/reload/internal/engine/runlock"
	"go.trai.ch/reload/internal/engine/scanner"
	"go.trai.ch/reload/internal/engine/scheduler"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			runlock.NodeID,
			store.NodeID,
			scanner.NodeID,
			resolver.NodeID,
			scheduler.NodeID,
			logger.NodeID,
			metrics.NodeID,
			watcher.FactoryNodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(app, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	lock, err := graft.Dep[*runlock.Lock](ctx)
	if err != nil {
		return nil, err
	}

	opener, err := graft.Dep[ports.StateStoreOpener](ctx)
	if err != nil {
		return nil, err
	}

	scan, err := graft.Dep[*scanner.Scanner](ctx)
	if err != nil {
		return nil, err
	}

	res, err := graft.Dep[*resolver.Resolver](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[*scheduler.Executor](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	m, err := graft.Dep[ports.Metrics](ctx)
	if err != nil {
		return nil, err
	}

	watchers, err := graft.Dep[ports.WatcherFactory](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, lock, opener, scan, res, executor, log, m, watchers), nil
}
