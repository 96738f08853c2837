package domain

import (
	"runtime"
	"time"
)

// StateBackend names a scan state persistence strategy.
type StateBackend string

const (
	// StateBackendJSON stores the scan state as a single JSON document.
	StateBackendJSON StateBackend = "json"
	// StateBackendBadger stores the scan state in an embedded badger database.
	StateBackendBadger StateBackend = "badger"
)

const (
	// DefaultLockTimeout bounds how long a run waits for the execution lock.
	DefaultLockTimeout = 5 * time.Second
	// DefaultDebounce is the quiet period the watcher waits for before triggering a run.
	DefaultDebounce = 200 * time.Millisecond
	// DefaultMinInterval is the minimum spacing between watch-triggered runs.
	DefaultMinInterval = time.Second
)

// Config is the resolved configuration of one workspace. Paths are absolute.
type Config struct {
	Root         string
	Dirs         []string
	Extensions   []string
	Parallelism  int
	StableOrder  bool
	ContentCheck bool
	LockTimeout  time.Duration
	State        StateConfig
	Exclude      ExcludeConfig
	Watch        WatchConfig
	Log          LogConfig
	Metrics      MetricsConfig
}

// StateConfig selects where the scan state lives.
type StateConfig struct {
	Backend StateBackend
	Path    string
}

// ExcludeConfig holds the workspace-wide exclusion sets.
type ExcludeConfig struct {
	Unload UnitSet
	Reload UnitSet
	Load   UnitSet
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	Debounce    time.Duration
	MinInterval time.Duration
}

// LogConfig tunes log output.
type LogConfig struct {
	JSON  bool
	Level LogLevel
}

// MetricsConfig configures the Prometheus endpoint served in watch mode.
type MetricsConfig struct {
	Addr string
}

// ScanParallelism bounds concurrent source reads. Reads are I/O bound, so it
// never drops below the number of CPUs even when unit execution is serial.
func (c *Config) ScanParallelism() int {
	return max(c.Parallelism, runtime.NumCPU())
}
