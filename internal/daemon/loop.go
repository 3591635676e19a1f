// Package daemon runs the panel subsystem: a single event loop owning all
// shell state, the enable/disable cycle and the IPC backend.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrLoopStopped is returned by Call once the loop has exited.
var ErrLoopStopped = errors.New("event loop stopped")

// LoopConfig holds configuration for the event loop.
type LoopConfig struct {
	// Interval between Resync calls; 0 disables the ticker.
	Interval time.Duration
	Resync   func()
	Logger   *slog.Logger
}

// Loop executes posted closures one at a time, in posting order, on the
// goroutine that called Run. Every piece of shell state is only touched from
// there.
type Loop struct {
	interval time.Duration
	resync   func()
	logger   *slog.Logger

	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	done    chan struct{}
	stopped bool
}

func NewLoop(cfg LoopConfig) *Loop {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		interval: cfg.Interval,
		resync:   cfg.Resync,
		logger:   logger,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Post queues fn. It never blocks, so it is safe from inside the loop.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		l.logger.Debug("event dropped, loop stopped")
		return
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Call runs fn on the loop and waits for its result. It must not be called
// from the loop goroutine.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	l.Post(func() {
		result <- l.safe("call", fn)
	})
	select {
	case err := <-result:
		return err
	case <-l.done:
		// The closure may have run just before shutdown.
		select {
		case err := <-result:
			return err
		default:
			return ErrLoopStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes events until ctx is cancelled. Events still queued at that
// point are dropped.
func (l *Loop) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if l.interval > 0 && l.resync != nil {
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	l.logger.Debug("event loop started", "resync_interval", l.interval)
	defer func() {
		l.mu.Lock()
		l.stopped = true
		l.pending = nil
		l.mu.Unlock()
		close(l.done)
		l.logger.Debug("event loop stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.wake:
			l.drain(ctx)
		case <-tick:
			_ = l.safe("resync", func() error {
				l.resync()
				return nil
			})
		}
	}
}

func (l *Loop) drain(ctx context.Context) {
	for ctx.Err() == nil {
		l.mu.Lock()
		if len(l.pending) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.pending[0]
		l.pending[0] = nil
		l.pending = l.pending[1:]
		l.mu.Unlock()

		_ = l.safe("event", func() error {
			fn()
			return nil
		})
	}
}

// safe runs fn, turning a panic into an error so one bad handler cannot take
// the daemon down.
func (l *Loop) safe(what string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("event loop panic recovered", "in", what, "error", r)
			err = fmt.Errorf("panic in %s: %v", what, r)
		}
	}()
	return fn()
}
