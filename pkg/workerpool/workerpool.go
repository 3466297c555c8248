// Package workerpool runs tasks on a bounded number of goroutines with
// first-error cancellation.
//
// A Pool lives for one phase of work: submit with Go, then Wait. Once any
// task fails, the pool context is cancelled and tasks not yet started are
// skipped.
package workerpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Task is a unit of work. It should return promptly once ctx is done.
type Task func(ctx context.Context) error

// Pool bounds concurrent tasks to a fixed size.
type Pool struct {
	g    *errgroup.Group
	ctx  context.Context
	size int
}

// New creates a pool of size workers derived from ctx. A size below one
// uses runtime.NumCPU. The returned context is cancelled on the first task
// error or when Wait returns.
func New(ctx context.Context, size int) (*Pool, context.Context) {
	if size < 1 {
		size = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(size)
	return &Pool{g: g, ctx: gctx, size: size}, gctx
}

// Size returns the concurrency bound.
func (p *Pool) Size() int { return p.size }

// Go submits a task, blocking while size tasks are already running. Tasks
// submitted after the pool context is done are not run.
func (p *Pool) Go(task Task) {
	p.g.Go(func() error {
		if err := p.ctx.Err(); err != nil {
			return err
		}
		return task(p.ctx)
	})
}

// Wait blocks until every submitted task returns and reports the first
// error.
func (p *Pool) Wait() error {
	return p.g.Wait()
}

// Run executes fn for every index in [0, n) on a pool of size workers and
// waits for all of them.
func Run(ctx context.Context, size, n int, fn func(ctx context.Context, i int) error) error {
	p, _ := New(ctx, size)
	for i := 0; i < n; i++ {
		p.Go(func(ctx context.Context) error {
			return fn(ctx, i)
		})
	}
	return p.Wait()
}
