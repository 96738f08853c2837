package store

import (
	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/reload/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StateStoreOpener = (*Opener)(nil)

// Opener selects the state backend named by the configuration.
type Opener struct {
	logger ports.Logger
}

// NewOpener creates an Opener.
func NewOpener(logger ports.Logger) *Opener {
	return &Opener{logger: logger}
}

// Open opens the configured backend. An empty path selects the backend's
// default location below the working directory.
func (o *Opener) Open(cfg domain.StateConfig) (ports.StateStore, error) {
	switch cfg.Backend {
	case "", domain.StateBackendJSON:
		path := cfg.Path
		if path == "" {
			path = domain.DefaultStatePath()
		}
		return NewFileStore(path), nil
	case domain.StateBackendBadger:
		path := cfg.Path
		if path == "" {
			path = domain.DefaultBadgerPath()
		}
		return OpenBadger(path, o.logger)
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownStateBackend, "cannot open state store"), "backend", string(cfg.Backend))
	}
}
