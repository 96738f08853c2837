// Package runlock serializes top-level runs within a process.
package runlock

import (
	"context"
	"sync"
	"time"

	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/zerr"
)

type heldKey struct{}

// Lock admits one run at a time. It is not re-entrant: a run that tries to
// start another run from its own context fails immediately instead of
// waiting on itself.
type Lock struct {
	slot chan struct{}
}

// New creates an unlocked Lock.
func New() *Lock {
	return &Lock{slot: make(chan struct{}, 1)}
}

// Acquire waits up to timeout for the lock. A non-positive timeout selects
// domain.DefaultLockTimeout. The returned context marks the holder and must be
// passed to everything running under the lock. release is idempotent.
func (l *Lock) Acquire(ctx context.Context, timeout time.Duration) (context.Context, func(), error) {
	if held, _ := ctx.Value(heldKey{}).(*Lock); held == l {
		return ctx, func() {}, zerr.Wrap(domain.ErrLockReentrant, "run started from within a running run")
	}
	if timeout <= 0 {
		timeout = domain.DefaultLockTimeout
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case l.slot <- struct{}{}:
	case <-timer.C:
		return ctx, func() {}, zerr.With(
			zerr.Wrap(domain.ErrLockAcquisition, "timed out waiting for the execution lock"),
			"timeout", timeout.String(),
		)
	case <-ctx.Done():
		return ctx, func() {}, ctx.Err()
	}

	var once sync.Once
	release := func() {
		once.Do(func() { <-l.slot })
	}
	return context.WithValue(ctx, heldKey{}, l), release, nil
}
