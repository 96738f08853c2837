package ports

import (
	"net/http"
	"time"

	"go.trai.ch/reload/internal/core/domain"
)

// Metrics records run and task outcomes.
//
//go:generate go run go.uber.org/mock/mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	// RunFinished records a finished run.
	RunFinished(status domain.RunStatus, d time.Duration)
	// TaskFinished records a finished unload or load task.
	TaskFinished(op domain.Operation, status domain.TaskStatus, d time.Duration)
	// LoadedUnits records the number of active units after a run.
	LoadedUnits(n int)
	// Handler exposes the collected metrics over HTTP.
	Handler() http.Handler
}
