// Package metrics records run and task outcomes as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/reload/internal/core/ports"
)

const namespace = "reload"

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus implements ports.Metrics on a private registry.
type Prometheus struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	tasks         *prometheus.CounterVec
	taskDuration  *prometheus.HistogramVec
	loadedUnits   prometheus.Gauge
	lastRunFinish prometheus.Gauge
}

// New creates the collectors and registers them, together with the Go
// runtime collectors, on a fresh registry.
func New() *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total runs by final status",
		}, []string{"status"}),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a run",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"status"}),
		tasks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "task",
			Name:      "total",
			Help:      "Total unload and load tasks by final status",
		}, []string{"op", "status"}),
		taskDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "task",
			Name:      "duration_seconds",
			Help:      "Wall time of a single task",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"op"}),
		loadedUnits: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loaded_units",
			Help:      "Units active after the last run",
		}),
		lastRunFinish: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
}

// RunFinished records a finished run.
func (p *Prometheus) RunFinished(status domain.RunStatus, d time.Duration) {
	p.runs.WithLabelValues(string(status)).Inc()
	p.runDuration.WithLabelValues(string(status)).Observe(d.Seconds())
	p.lastRunFinish.SetToCurrentTime()
}

// TaskFinished records a finished task. Cancelled tasks never ran, so only
// their count is recorded.
func (p *Prometheus) TaskFinished(op domain.Operation, status domain.TaskStatus, d time.Duration) {
	p.tasks.WithLabelValues(op.String(), string(status)).Inc()
	if status != domain.TaskCancelled {
		p.taskDuration.WithLabelValues(op.String()).Observe(d.Seconds())
	}
}

// LoadedUnits records the number of active units.
func (p *Prometheus) LoadedUnits(n int) {
	p.loadedUnits.Set(float64(n))
}

// Handler exposes the registry in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry returns the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}
