package domain

import (
	"time"

	"go.trai.ch/zerr"
)

// Mode selects which units a run reloads.
type Mode string

const (
	// ModeChanged reloads units touched by changed sources and their dependents.
	ModeChanged Mode = "changed"
	// ModeAllLoaded reloads every currently loaded unit.
	ModeAllLoaded Mode = "all-loaded"
	// ModeAllDiscovered loads every known unit, loaded or not.
	ModeAllDiscovered Mode = "all-discovered"
	// ModePattern reloads changed units plus units whose id matches a pattern.
	ModePattern Mode = "pattern"
)

// ParseMode validates a mode name. The empty string selects ModeChanged.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case "":
		return ModeChanged, nil
	case ModeChanged, ModeAllLoaded, ModeAllDiscovered, ModePattern:
		return m, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrUnknownMode, "invalid mode"), "mode", s)
	}
}

// RunStatus is the lifecycle of one run: Scheduled, Running, then one of
// Completed, Failed or Cancelled.
type RunStatus string

const (
	// RunScheduled is the status before any task started.
	RunScheduled RunStatus = "Scheduled"
	// RunRunning is the status while tasks execute.
	RunRunning RunStatus = "Running"
	// RunCompleted means every task succeeded.
	RunCompleted RunStatus = "Completed"
	// RunFailed means a load failed and the run was aborted.
	RunFailed RunStatus = "Failed"
	// RunCancelled means the caller cancelled the run before it finished.
	RunCancelled RunStatus = "Cancelled"
)

// Report is the user-visible outcome of a run.
type Report struct {
	RunID    string
	Status   RunStatus
	Unloaded []InternedString
	Loaded   []InternedString
	// Failed is the unit whose load aborted the run, if any.
	Failed *InternedString
	// Cause is the error that aborted the run, if any.
	Cause error
	// Tasks records the final status of every planned task.
	Tasks map[Task]TaskStatus
	// Deferred holds source read errors that did not block the run, keyed by source.
	Deferred map[InternedString]error
	Duration time.Duration
}

// OK reports whether the run completed without failure.
func (r *Report) OK() bool {
	return r != nil && r.Status == RunCompleted
}
