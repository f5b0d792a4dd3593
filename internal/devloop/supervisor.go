package devloop

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
)

// Supervisor runs the background tasks of one session. The first task to
// fail cancels the shared context and its error is what Wait returns, so
// a dead receive loop is never silent.
type Supervisor struct {
	g      *errgroup.Group
	ctx    context.Context
	stop   context.CancelFunc
	cancel context.CancelFunc
}

// NewSupervisor derives a context that ends on SIGINT, SIGTERM, Stop, or
// the first task error.
func NewSupervisor(parent context.Context) *Supervisor {
	sigCtx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(sigCtx)
	g, gctx := errgroup.WithContext(ctx)
	return &Supervisor{g: g, ctx: gctx, stop: stop, cancel: cancel}
}

// Context is cancelled when the session should wind down.
func (s *Supervisor) Context() context.Context { return s.ctx }

// Go starts a background task.
func (s *Supervisor) Go(task func(ctx context.Context) error) {
	s.g.Go(func() error { return task(s.ctx) })
}

// Stop asks every task to finish.
func (s *Supervisor) Stop() { s.cancel() }

// Wait blocks until every task has returned, which for long-running
// tasks means until a signal or a failure, and returns the first error.
func (s *Supervisor) Wait() error {
	err := s.g.Wait()
	s.cancel()
	s.stop()
	return err
}

// Shutdown stops the session and then waits like Wait.
func (s *Supervisor) Shutdown() error {
	s.cancel()
	return s.Wait()
}
