package scheduler

import (
	"context"
	"maps"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/reload/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Run is everything the executor needs for one execution.
type Run struct {
	// Plan is the fork-join tree built from Unload and Load.
	Plan *domain.Plan
	// Graph supplies unit records for units that are no longer declared.
	Graph *domain.Graph
	// Unload is ordered outermost dependent first.
	Unload []domain.InternedString
	// Load is ordered dependency first.
	Load []domain.InternedString
	// Carried is the state handed to loads, keyed by unit.
	Carried map[domain.InternedString]domain.CarriedState
	// Parallelism bounds the number of concurrent workers, the caller included.
	Parallelism int
}

// Executor runs plans against the unit loader and unloader.
type Executor struct {
	loader   ports.UnitLoader
	unloader ports.UnitUnloader
	logger   ports.Logger
	tracer   ports.Tracer
	metrics  ports.Metrics
	newID    func() string
}

// NewExecutor creates a new Executor with the given dependencies.
func NewExecutor(
	loader ports.UnitLoader,
	unloader ports.UnitUnloader,
	logger ports.Logger,
	tracer ports.Tracer,
	metrics ports.Metrics,
) *Executor {
	return &Executor{
		loader:   loader,
		unloader: unloader,
		logger:   logger,
		tracer:   tracer,
		metrics:  metrics,
		newID:    uuid.NewString,
	}
}

// Execute runs the plan and returns the report together with the resulting
// state. state is not modified.
//
// PendingUnload and PendingLoad are set to the full sequences before the first
// task, and each task removes its unit as it completes. Whatever remains when
// the run stops is the work a retry has to do.
func (e *Executor) Execute(ctx context.Context, run Run, state *domain.ScanState) (*domain.Report, *domain.ScanState) {
	start := time.Now()
	runID := e.newID()

	initial := state.Clone()
	initial.PendingUnload = slices.Clone(run.Unload)
	initial.PendingLoad = slices.Clone(run.Load)
	for u, c := range run.Carried {
		if len(c) > 0 {
			initial.Carried[u] = c
		} else {
			delete(initial.Carried, u)
		}
	}

	r := &execution{
		e:     e,
		graph: run.Graph,
		sem:   semaphore.NewWeighted(int64(max(run.Parallelism, 1) - 1)),
	}
	r.state.Store(initial)

	planned := make([]string, 0, len(run.Unload)+len(run.Load))
	statuses := make(map[domain.Task]domain.TaskStatus, len(run.Unload)+len(run.Load))
	for t := range run.Plan.Tasks() {
		planned = append(planned, t.String())
		statuses[t] = domain.TaskPending
	}
	r.results.Store(&results{statuses: statuses})
	e.tracer.EmitPlan(ctx, planned)

	report := &domain.Report{RunID: runID}

	ctx, span := e.tracer.Start(ctx, "run", ports.WithAttribute("run_id", runID))
	defer span.End()

	transition(span, report, domain.RunScheduled)
	transition(span, report, domain.RunRunning)
	err := r.node(ctx, run.Plan)

	final := r.state.Load()
	res := r.results.Load()

	report.Unloaded = res.unloaded
	report.Loaded = res.loaded
	report.Tasks = maps.Clone(res.statuses)
	report.Duration = time.Since(start)
	// Tasks the run never reached were cut off by the failure or cancellation.
	for t, status := range report.Tasks {
		if status == domain.TaskPending {
			report.Tasks[t] = domain.TaskCancelled
		}
	}

	switch f := r.failure.Load(); {
	case f != nil:
		report.Failed = &f.unit
		report.Cause = f.err
		span.RecordError(f.err)
		transition(span, report, domain.RunFailed)
	case err != nil || ctx.Err() != nil:
		report.Cause = zerr.Wrap(domain.ErrRunCancelled, "run stopped before all tasks finished")
		transition(span, report, domain.RunCancelled)
	default:
		transition(span, report, domain.RunCompleted)
	}

	e.metrics.RunFinished(report.Status, report.Duration)
	e.metrics.LoadedUnits(final.Loaded.Len())

	return report, final
}

// transition moves the run to status and records it on the run span.
func transition(span ports.Span, report *domain.Report, status domain.RunStatus) {
	report.Status = status
	span.SetAttribute("status", string(status))
}

type failure struct {
	unit domain.InternedString
	err  error
}

// results is an immutable snapshot of what the run has done so far.
type results struct {
	unloaded []domain.InternedString
	loaded   []domain.InternedString
	statuses map[domain.Task]domain.TaskStatus
}

type execution struct {
	e     *Executor
	graph *domain.Graph
	sem   *semaphore.Weighted

	state     atomic.Pointer[domain.ScanState]
	results   atomic.Pointer[results]
	cancelled atomic.Bool
	failure   atomic.Pointer[failure]
}

// node runs Before in order, then the forks concurrently, then After in order.
// It stops at the first task that fails or is skipped.
func (r *execution) node(ctx context.Context, p *domain.Plan) error {
	if p == nil {
		return nil
	}
	for _, t := range p.Before {
		if err := r.task(ctx, t); err != nil {
			return err
		}
	}
	if err := r.fork(ctx, p.Forks); err != nil {
		return err
	}
	for _, t := range p.After {
		if err := r.task(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// fork starts a goroutine per fork while the semaphore has room and runs the
// rest on the caller, so nested forks never wait on a worker that is itself
// waiting.
func (r *execution) fork(ctx context.Context, forks []*domain.Plan) error {
	switch len(forks) {
	case 0:
		return nil
	case 1:
		return r.node(ctx, forks[0])
	}

	var g errgroup.Group
	var inline error
	for _, f := range forks {
		if r.sem.TryAcquire(1) {
			g.Go(func() error {
				defer r.sem.Release(1)
				return r.node(ctx, f)
			})
			continue
		}
		if err := r.node(ctx, f); err != nil && inline == nil {
			inline = err
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return inline
}

func (r *execution) task(ctx context.Context, t domain.Task) error {
	if r.cancelled.Load() {
		r.finish(t, domain.TaskCancelled, 0)
		return domain.ErrRunCancelled
	}
	if err := ctx.Err(); err != nil {
		r.cancelled.Store(true)
		r.finish(t, domain.TaskCancelled, 0)
		return err
	}

	ctx, span := r.e.tracer.Start(ctx, t.String(),
		ports.WithAttribute("unit", t.Unit.String()),
		ports.WithAttribute("op", t.Op.String()),
	)
	defer span.End()

	r.setStatus(t, domain.TaskRunning)
	start := time.Now()

	if t.Op == domain.OpUnload {
		r.unload(ctx, t.Unit)
		r.finish(t, domain.TaskCompleted, time.Since(start))
		return nil
	}

	if err := r.load(ctx, t.Unit); err != nil {
		span.RecordError(err)
		r.finish(t, domain.TaskFailed, time.Since(start))
		return err
	}
	r.finish(t, domain.TaskCompleted, time.Since(start))
	return nil
}

func (r *execution) unload(ctx context.Context, id domain.InternedString) {
	captured, err := r.e.unloader.Unload(ctx, r.unit(id))
	if err != nil {
		r.e.logger.Warn("unload failed", "unit", id.String(), "error", err.Error())
	}

	r.updateState(func(s *domain.ScanState) {
		s.Loaded.Remove(id)
		s.PendingUnload = without(s.PendingUnload, id)
		if _, declared := s.Units[id]; declared && len(captured) > 0 {
			s.Carried[id] = domain.DeepMerge(s.Carried[id], captured)
		}
	})
	r.updateResults(func(res *results) {
		res.unloaded = append(res.unloaded, id)
	})
}

func (r *execution) load(ctx context.Context, id domain.InternedString) error {
	current := r.state.Load()
	unit, ok := current.Units[id]
	if !ok {
		unit = r.unit(id)
	}

	if err := r.e.loader.Load(ctx, unit, current.Carried[id]); err != nil {
		uerr := &domain.UnitError{Unit: id, Op: domain.OpLoad, Err: err}
		r.failure.CompareAndSwap(nil, &failure{unit: id, err: uerr})
		r.cancelled.Store(true)

		r.updateState(func(s *domain.ScanState) {
			s.PendingUnload = append([]domain.InternedString{id}, without(s.PendingUnload, id)...)
		})
		return uerr
	}

	// A load that finishes after another task failed still counts: the unit is
	// loaded and the next run must not load it again.
	r.updateState(func(s *domain.ScanState) {
		s.Loaded.Add(id)
		s.PendingLoad = without(s.PendingLoad, id)
		delete(s.Carried, id)
	})
	r.updateResults(func(res *results) {
		res.loaded = append(res.loaded, id)
	})
	return nil
}

// unit returns the newest known record of id.
func (r *execution) unit(id domain.InternedString) domain.Unit {
	if u, ok := r.state.Load().Units[id]; ok {
		return u
	}
	if r.graph != nil {
		if u, ok := r.graph.Unit(id); ok {
			return u
		}
	}
	return domain.Unit{ID: id}
}

func (r *execution) setStatus(t domain.Task, status domain.TaskStatus) {
	r.updateResults(func(res *results) {
		res.statuses[t] = status
	})
}

func (r *execution) finish(t domain.Task, status domain.TaskStatus, d time.Duration) {
	r.setStatus(t, status)
	r.e.metrics.TaskFinished(t.Op, status, d)
}

// updateState applies fn to a private copy of the current state and publishes
// it, retrying when another task published first.
func (r *execution) updateState(fn func(*domain.ScanState)) {
	for {
		old := r.state.Load()
		next := old.Clone()
		fn(next)
		if r.state.CompareAndSwap(old, next) {
			return
		}
	}
}

func (r *execution) updateResults(fn func(*results)) {
	for {
		old := r.results.Load()
		next := &results{
			unloaded: slices.Clone(old.unloaded),
			loaded:   slices.Clone(old.loaded),
			statuses: maps.Clone(old.statuses),
		}
		fn(next)
		if r.results.CompareAndSwap(old, next) {
			return
		}
	}
}

func without(seq []domain.InternedString, id domain.InternedString) []domain.InternedString {
	return slices.DeleteFunc(slices.Clone(seq), func(u domain.InternedString) bool {
		return u == id
	})
}
