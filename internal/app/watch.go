package app

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/reload/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/time/rate"
)

const metricsShutdownTimeout = 5 * time.Second

// WatchOptions configures watch mode.
type WatchOptions struct {
	// MetricsAddr overrides the configured Prometheus listen address.
	MetricsAddr string
	// Run is the template for every triggered run. Throw is ignored.
	Run RunOptions
}

// Watch runs once, then again whenever a source below the configured
// directories changes, until ctx is done. Runs are spaced by at least the
// configured minimum interval, and changes arriving during a run trigger
// exactly one follow-up run.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	w, err := a.watchers.NewWatcher(cfg.Watch.Debounce)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	if err := w.Start(ctx, cfg.Dirs); err != nil {
		return err
	}

	addr := cfg.Metrics.Addr
	if opts.MetricsAddr != "" {
		addr = opts.MetricsAddr
	}
	if addr != "" {
		stop := a.serveMetrics(addr)
		defer stop()
	}

	loop := &watchLoop{
		app:     a,
		opts:    opts.Run,
		limiter: rate.NewLimiter(rate.Every(cfg.Watch.MinInterval), 1),
	}
	defer loop.wait()

	a.logger.Info("watching for changes", "dirs", strings.Join(cfg.Dirs, ","))
	loop.trigger(ctx)

	for event := range w.Events() {
		if !relevant(event, cfg.Extensions) {
			continue
		}
		a.logger.Debug("sources changed", "paths", len(event.Paths))
		loop.trigger(ctx)
	}

	return nil
}

// watchLoop collapses triggers into runs. A trigger marks the sources dirty;
// whoever wins the singleflight keeps running until nothing is dirty.
type watchLoop struct {
	app     *App
	opts    RunOptions
	limiter *rate.Limiter
	dirty   atomic.Bool
	wg      sync.WaitGroup
}

func (l *watchLoop) trigger(ctx context.Context) {
	l.dirty.Store(true)
	l.wg.Go(func() {
		for l.dirty.Load() && ctx.Err() == nil {
			_, _, _ = l.app.flight.Do("run", func() (any, error) {
				for l.dirty.Swap(false) {
					if err := l.limiter.Wait(ctx); err != nil {
						return nil, err
					}
					l.runOnce(ctx)
				}
				return nil, nil
			})
		}
	})
}

func (l *watchLoop) wait() {
	l.wg.Wait()
}

func (l *watchLoop) runOnce(ctx context.Context) {
	opts := l.opts
	opts.Throw = false

	report, err := l.app.Run(ctx, opts)
	if err != nil {
		l.app.logger.Error(err)
		return
	}
	l.app.logReport(report)
}

// logReport summarises a finished run.
func (a *App) logReport(report *domain.Report) {
	args := []any{
		"status", string(report.Status),
		"unloaded", len(report.Unloaded),
		"loaded", len(report.Loaded),
		"duration", report.Duration.Round(time.Millisecond).String(),
	}
	switch {
	case report.OK():
		a.logger.Info("run finished", args...)
	case report.Cause != nil:
		a.logger.Error(report.Cause)
		a.logger.Warn("run finished", args...)
	default:
		a.logger.Warn("run finished", args...)
	}
	for source, err := range report.Deferred {
		a.logger.Warn("source skipped", "source", source.String(), "error", err.Error())
	}
}

// relevant reports whether a batch may touch a source. Removals and renames
// always count since they can take whole directories with them.
func relevant(event ports.WatchEvent, extensions []string) bool {
	if event.Operation == ports.OpRemove || event.Operation == ports.OpRename {
		return true
	}
	for _, path := range event.Paths {
		if len(extensions) == 0 || slices.Contains(extensions, strings.ToLower(filepath.Ext(path))) {
			return true
		}
	}
	return false
}

// serveMetrics exposes the metrics handler on addr until the returned
// function is called.
func (a *App) serveMetrics(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(zerr.With(zerr.Wrap(err, "metrics server failed"), "addr", addr))
		}
	}()
	a.logger.Info("serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
