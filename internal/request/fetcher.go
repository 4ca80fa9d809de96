package request

import (
	"context"
	"sync"
)

// Fetcher is a controller bound to one GET path, issued once on mount and
// re-issued on demand.
type Fetcher[T any] struct {
	ctrl *Controller[T]
	path string
	once sync.Once
}

// NewFetcher creates a fetcher for path. Nothing is sent until Mount.
func NewFetcher[T any](c *Client, path string) *Fetcher[T] {
	return &Fetcher[T]{ctrl: NewController[T](c), path: path}
}

// Path returns the fixed request path.
func (f *Fetcher[T]) Path() string { return f.path }

// Mount issues the read the first time it is called and returns what
// Invoke returned. Later calls only return the current outcome.
func (f *Fetcher[T]) Mount(ctx context.Context) Outcome[T] {
	var (
		out    Outcome[T]
		issued bool
	)
	f.once.Do(func() {
		out = f.ctrl.Invoke(ctx, f.path)
		issued = true
	})
	if issued {
		return out
	}
	return f.ctrl.Outcome()
}

// Refetch re-issues the mount-time request.
func (f *Fetcher[T]) Refetch(ctx context.Context) Outcome[T] {
	return f.ctrl.Invoke(ctx, f.path)
}

// Outcome returns a snapshot of the current state.
func (f *Fetcher[T]) Outcome() Outcome[T] { return f.ctrl.Outcome() }

// Watch registers an observer on the underlying controller.
func (f *Fetcher[T]) Watch(fn func(Outcome[T])) func() { return f.ctrl.Watch(fn) }

// Close releases the underlying controller.
func (f *Fetcher[T]) Close() { f.ctrl.Close() }
