// Package app implements the application layer for reload.
package app

import (
	"context"
	"os"
	"regexp"

	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/reload/internal/core/ports"
	"go.trai.ch/reload/internal/engine/resolver"
	"go.trai.ch/reload/internal/engine/runlock"
	"go.trai.ch/reload/internal/engine/scanner"
	"go.trai.ch/reload/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// configurableLogger is implemented by loggers whose output can follow the
// workspace configuration.
type configurableLogger interface {
	SetLevel(level domain.LogLevel)
	SetJSON(enable bool)
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	lock         *runlock.Lock
	opener       ports.StateStoreOpener
	scanner      *scanner.Scanner
	resolver     *resolver.Resolver
	executor     *scheduler.Executor
	logger       ports.Logger
	metrics      ports.Metrics
	watchers     ports.WatcherFactory

	flight singleflight.Group
	getwd  func() (string, error)
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	lock *runlock.Lock,
	opener ports.StateStoreOpener,
	scan *scanner.Scanner,
	res *resolver.Resolver,
	executor *scheduler.Executor,
	log ports.Logger,
	metrics ports.Metrics,
	watchers ports.WatcherFactory,
) *App {
	return &App{
		configLoader: loader,
		lock:         lock,
		opener:       opener,
		scanner:      scan,
		resolver:     res,
		executor:     executor,
		logger:       log,
		metrics:      metrics,
		watchers:     watchers,
		getwd:        os.Getwd,
	}
}

// WithWorkDir makes the App discover its configuration from dir instead of
// the process working directory.
func (a *App) WithWorkDir(dir string) *App {
	a.getwd = func() (string, error) { return dir, nil }
	return a
}

// RunOptions configures a single run.
type RunOptions struct {
	Mode domain.Mode
	// Pattern is a regular expression over unit ids, used in pattern mode.
	Pattern string
	// ExcludeUnload and ExcludeReload extend the configured exclusion sets.
	ExcludeUnload []string
	ExcludeReload []string
	// Throw makes Run return the cause of a failed or cancelled run as its error.
	// The report is returned either way.
	Throw bool
	// Full ignores the watermark and re-reads every source.
	Full bool
}

// Run scans the sources, resolves the work and executes it under the run lock.
//
//nolint:cyclop // orchestration function
func (a *App) Run(ctx context.Context, opts RunOptions) (*domain.Report, error) {
	// 1. Load configuration
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	resolveOpts, err := resolveOptions(cfg, opts)
	if err != nil {
		return nil, err
	}

	// 2. Acquire the run lock
	ctx, release, err := a.lock.Acquire(ctx, cfg.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	// 3. Load the previous state
	store, err := a.opener.Open(cfg.State)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			a.logger.Warn("failed to close state store", "error", cerr.Error())
		}
	}()

	prev, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	// 4. Scan
	since := prev.Watermark
	if opts.Full {
		since = 0
	}
	cs, err := a.scanner.Scan(ctx, prev, scanner.Options{
		Dirs:          cfg.Dirs,
		Extensions:    cfg.Extensions,
		Since:         since,
		ExcludeReload: resolveOpts.ExcludeReload,
		ContentCheck:  cfg.ContentCheck,
		Parallelism:   cfg.ScanParallelism(),
	})
	if err != nil {
		return nil, zerr.Wrap(err, "scan failed")
	}
	for id, serr := range cs.SourceErrors {
		a.logger.Warn("source could not be read", "source", id.String(), "error", serr.Error())
	}

	// 5. Resolve
	res, err := a.resolver.Resolve(cs, resolveOpts)
	if err != nil {
		return nil, err
	}

	// 6. Plan and execute
	plan := scheduler.BuildPlan(res.Graph, res.Unload, res.Load)
	if err := scheduler.Validate(plan, res.Graph, res.Unload, res.Load); err != nil {
		return nil, err
	}

	a.logger.Debug("executing plan", "unload", len(res.Unload), "load", len(res.Load))

	report, next := a.executor.Execute(ctx, scheduler.Run{
		Plan:        plan,
		Graph:       res.Graph,
		Unload:      res.Unload,
		Load:        res.Load,
		Carried:     res.Carried,
		Parallelism: cfg.Parallelism,
	}, cs.Next)

	if len(cs.SourceErrors) > 0 {
		report.Deferred = cs.SourceErrors
	}

	// 7. Persist, even when the run was cancelled, so the pending queues survive.
	if err := store.Save(context.WithoutCancel(ctx), next); err != nil {
		return report, err
	}

	if opts.Throw && !report.OK() {
		return report, report.Cause
	}
	return report, nil
}

// Status returns the configuration in effect and the persisted scan state.
func (a *App) Status(ctx context.Context) (*domain.Config, *domain.ScanState, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	store, err := a.opener.Open(cfg.State)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = store.Close() }()

	state, err := store.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cfg, state, nil
}

// loadConfig discovers the configuration and applies its log settings.
func (a *App) loadConfig() (*domain.Config, error) {
	cwd, err := a.getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to get working directory")
	}

	cfg, err := a.configLoader.Load(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	if l, ok := a.logger.(configurableLogger); ok {
		l.SetJSON(cfg.Log.JSON)
		l.SetLevel(cfg.Log.Level)
	}
	return cfg, nil
}

// resolveOptions merges the run options into the configured policies.
func resolveOptions(cfg *domain.Config, opts RunOptions) (resolver.Options, error) {
	mode := opts.Mode
	if mode == "" {
		mode = domain.ModeChanged
	}

	ro := resolver.Options{
		Mode:          mode,
		ExcludeUnload: cfg.Exclude.Unload.Union(unitSet(opts.ExcludeUnload)),
		ExcludeReload: cfg.Exclude.Reload.Union(unitSet(opts.ExcludeReload)),
		ExcludeLoad:   cfg.Exclude.Load.Clone(),
		Stable:        cfg.StableOrder,
	}

	if opts.Pattern != "" {
		re, err := regexp.Compile(opts.Pattern)
		if err != nil {
			return resolver.Options{}, zerr.With(zerr.Wrap(domain.ErrInvalidPattern, err.Error()), "pattern", opts.Pattern)
		}
		ro.Pattern = re
	}
	return ro, nil
}

func unitSet(ids []string) domain.UnitSet {
	set := make(domain.UnitSet, len(ids))
	for _, id := range ids {
		set.Add(domain.NewInternedString(id))
	}
	return set
}
