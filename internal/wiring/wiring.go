// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/reload/internal/adapters/config"
	_ "go.trai.ch/reload/internal/adapters/fs"
	_ "go.trai.ch/reload/internal/adapters/logger"
	_ "go.trai.ch/reload/internal/adapters/metrics"
	_ "go.trai.ch/reload/internal/adapters/shell"
	_ "go.trai.ch/reload/internal/adapters/source"
	_ "go.trai.ch/reload/internal/adapters/store"
	_ "go.trai.ch/reload/internal/adapters/telemetry"
	_ "go.trai.ch/reload/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/reload/internal/app"
	_ "go.trai.ch/reload/internal/engine/resolver"
	_ "go.trai.ch/reload/internal/engine/runlock"
	_ "go.trai.ch/reload/internal/engine/scanner"
	_ "go.trai.ch/reload/internal/engine/scheduler"
)
