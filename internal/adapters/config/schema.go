package config

// Reloadfile represents the structure of the reload.yaml configuration file.
type Reloadfile struct {
	Version      string     `yaml:"version"`
	Root         string     `yaml:"root"`
	Dirs         []string   `yaml:"dirs" validate:"required,min=1,dive,required"`
	Extensions   []string   `yaml:"extensions" validate:"dive,startswith=."`
	Parallelism  *int       `yaml:"parallelism" validate:"omitempty,gte=1"`
	StableOrder  *bool      `yaml:"stable_order"`
	ContentCheck bool       `yaml:"content_check"`
	LockTimeout  string     `yaml:"lock_timeout"`
	State        StateDTO   `yaml:"state"`
	Exclude      ExcludeDTO `yaml:"exclude"`
	Watch        WatchDTO   `yaml:"watch"`
	Log          LogDTO     `yaml:"log"`
	Metrics      MetricsDTO `yaml:"metrics"`
}

// StateDTO selects the scan state backend.
type StateDTO struct {
	Backend string `yaml:"backend" validate:"omitempty,oneof=json badger"`
	Path    string `yaml:"path"`
}

// ExcludeDTO lists units excluded from each operation.
type ExcludeDTO struct {
	Unload []string `yaml:"unload"`
	Reload []string `yaml:"reload"`
	Load   []string `yaml:"load"`
}

// WatchDTO tunes watch mode.
type WatchDTO struct {
	Debounce    string `yaml:"debounce"`
	MinInterval string `yaml:"min_interval"`
}

// LogDTO tunes log output.
type LogDTO struct {
	JSON  bool   `yaml:"json"`
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
}

// MetricsDTO configures the Prometheus endpoint.
type MetricsDTO struct {
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}
