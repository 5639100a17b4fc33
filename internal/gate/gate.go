// Package gate implements the store's single-slot mutual-exclusion
// primitive: every file-touching operation serializes through it, and
// waiters are admitted in arrival order.
//
// Grounded on the teacher's use of golang.org/x/sync for coordination
// primitives (there, singleflight.Group for request dedup); here the
// sibling semaphore package supplies the single-slot FIFO admission
// spec.md's concurrency model requires.
package gate

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Gate serializes access to a single critical section.
type Gate struct {
	sem *semaphore.Weighted
}

// New returns a gate with one slot.
func New() *Gate {
	return &Gate{sem: semaphore.NewWeighted(1)}
}

// Do runs fn with the slot held, waiting for any in-flight holder to
// finish first, and releases the slot on every exit path including a
// panic or error from fn.
func (g *Gate) Do(ctx context.Context, fn func() error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)
	return fn()
}
