package domain

import (
	"go.trai.ch/zerr"
)

var (
	// ErrSourceParse is returned when a source declaring an active unit cannot be read.
	ErrSourceParse = zerr.New("source parse failed")

	// ErrLockAcquisition is returned when a run cannot obtain the execution lock in time.
	ErrLockAcquisition = zerr.New("execution lock acquisition failed")

	// ErrLockReentrant is returned when a run is started from within a running run.
	ErrLockReentrant = zerr.Wrap(ErrLockAcquisition, "execution lock is not re-entrant")

	// ErrUnitLoad is returned when the loader fails for a unit.
	ErrUnitLoad = zerr.New("unit load failed")

	// ErrPlanInvariant is returned when the unload/load sequences disagree with the graph.
	// It indicates a bug and is never recoverable.
	ErrPlanInvariant = zerr.New("plan invariant violated")

	// ErrRunCancelled is returned when the caller cancelled the run before it finished.
	ErrRunCancelled = zerr.New("run cancelled")

	// ErrRunFailed is returned by the CLI when a run did not complete and its
	// report was already printed.
	ErrRunFailed = zerr.New("run did not complete")

	// ErrUnknownMode is returned when a run mode name is not recognized.
	ErrUnknownMode = zerr.New("unknown run mode")

	// ErrInvalidPattern is returned when a pattern-mode regular expression does not compile.
	ErrInvalidPattern = zerr.New("invalid unit pattern")

	// ErrMissingPattern is returned when pattern mode is selected without a pattern.
	ErrMissingPattern = zerr.New("pattern mode requires a pattern")

	// ErrUnknownSourceFormat is returned when no reader handles a source's extension.
	ErrUnknownSourceFormat = zerr.New("unknown source format")

	// ErrConfigRead is returned when the configuration file cannot be read.
	ErrConfigRead = zerr.New("failed to read configuration")

	// ErrConfigParse is returned when the configuration file is not valid YAML.
	ErrConfigParse = zerr.New("failed to parse configuration")

	// ErrConfigInvalid is returned when the configuration fails validation.
	ErrConfigInvalid = zerr.New("invalid configuration")

	// ErrStateRead is returned when the persisted scan state cannot be loaded.
	ErrStateRead = zerr.New("failed to read scan state")

	// ErrStateWrite is returned when the scan state cannot be persisted.
	ErrStateWrite = zerr.New("failed to write scan state")

	// ErrUnknownStateBackend is returned when the configured state backend is not supported.
	ErrUnknownStateBackend = zerr.New("unknown state backend")
)

// UnitError attaches the failing unit to an underlying fault. It matches both
// ErrUnitLoad and the wrapped cause with errors.Is.
type UnitError struct {
	Unit InternedString
	Op   Operation
	Err  error
}

// Error implements the error interface.
func (e *UnitError) Error() string {
	return e.Op.String() + " " + e.Unit.String() + ": " + e.Err.Error()
}

// Unwrap exposes the sentinel and the cause to errors.Is and errors.As.
func (e *UnitError) Unwrap() []error {
	return []error{ErrUnitLoad, e.Err}
}

// KindError classifies a fault under one of the sentinels above. errors.Is
// matches both the sentinel and anything in the fault's own chain.
type KindError struct {
	Kind error
	Err  error
}

// Classify returns err classified as kind, or nil when err is nil.
func Classify(kind, err error) error {
	if err == nil {
		return nil
	}
	return &KindError{Kind: kind, Err: err}
}

// Error implements the error interface.
func (e *KindError) Error() string {
	return e.Kind.Error() + ": " + e.Err.Error()
}

// Unwrap exposes the sentinel and the fault to errors.Is and errors.As.
func (e *KindError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
