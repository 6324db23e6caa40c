// Package lifecycle coordinates subsystem startup and shutdown around a
// single cancellable context.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ReadinessChecker reports whether a subsystem is ready to serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator runs registered startup hooks concurrently, tracks readiness,
// and fans shutdown out to registered hooks when its context is cancelled.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc

	startup  sync.WaitGroup
	shutdown sync.WaitGroup

	mu    sync.RWMutex
	ready bool
}

// New creates a Coordinator with a fresh cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{ctx: ctx, cancel: cancel}
}

// Context returns the coordinator's context; it is cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup registers fn to run concurrently during startup.
func (c *Coordinator) OnStartup(fn func()) {
	c.startup.Go(fn)
}

// OnShutdown registers fn to run concurrently during shutdown. Hooks should
// block on <-Context().Done() before performing cleanup.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdown.Go(fn)
}

// Ready reports whether all startup hooks have completed.
func (c *Coordinator) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// WaitForStartup blocks until every startup hook has finished, then marks
// the coordinator ready.
func (c *Coordinator) WaitForStartup() {
	c.startup.Wait()

	c.mu.Lock()
	c.ready = true
	c.mu.Unlock()
}

// Shutdown cancels the context and waits for all shutdown hooks, bounded by
// timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdown.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown incomplete after %v", timeout)
	}
}
