package request

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Outcome is the observable state of a controller.
//
// Loading implies an empty Error. Data is only replaced by a successful
// invocation and survives later failures.
type Outcome[T any] struct {
	Data    *T       `json:"data"`
	Loading bool     `json:"loading"`
	Error   string   `json:"error,omitempty"`
	Failure *Failure `json:"-"`
}

// Controller owns the lifecycle of the operations issued through it.
//
// Overlapping invocations are sequenced: only the most recently issued one
// may settle the outcome, older completions are dropped.
type Controller[T any] struct {
	client *Client

	mu       sync.Mutex
	state    Outcome[T]
	seq      uint64
	closed   bool
	watchers map[uint64]func(Outcome[T])
	nextW    uint64

	life   context.Context
	cancel context.CancelFunc
}

// NewController creates a controller in the loading state.
func NewController[T any](c *Client) *Controller[T] {
	life, cancel := context.WithCancel(context.Background())
	return &Controller[T]{
		client:   c,
		state:    Outcome[T]{Loading: true},
		watchers: make(map[uint64]func(Outcome[T])),
		life:     life,
		cancel:   cancel,
	}
}

// Outcome returns a snapshot of the current state.
func (c *Controller[T]) Outcome() Outcome[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Watch registers fn to be called after every state transition and returns
// a function that removes it.
func (c *Controller[T]) Watch(fn func(Outcome[T])) (unwatch func()) {
	c.mu.Lock()
	id := c.nextW
	c.nextW++
	c.watchers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.watchers, id)
		c.mu.Unlock()
	}
}

// Close cancels in-flight requests and stops all further transitions.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	c.closed = true
	clear(c.watchers)
	c.mu.Unlock()
	c.cancel()
}

// Invoke performs one request and settles the outcome. It blocks until the
// request completes and returns the snapshot taken right after settling.
// Failures never escape as errors; they are recorded on the outcome. A 401
// only shows up as the Failure of the returned snapshot.
func (c *Controller[T]) Invoke(ctx context.Context, path string, opts ...Options) Outcome[T] {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	c.mu.Lock()
	if c.closed {
		snap := c.state
		c.mu.Unlock()
		return snap
	}
	c.seq++
	seq := c.seq
	c.state.Loading = true
	c.state.Error = ""
	c.state.Failure = nil
	c.notifyLocked()
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.life, cancel)
	defer stop()

	start := time.Now()
	raw, status, failure := c.client.exchange(ctx, path, o)

	var data *T
	if failure == nil && len(raw) > 0 {
		data = new(T)
		if err := json.Unmarshal(raw, data); err != nil {
			data = nil
			failure = &Failure{Kind: FailureDecode, Status: status, Err: err}
		}
	}

	c.mu.Lock()
	applied := !c.closed && seq == c.seq
	if applied {
		c.state.Loading = false
		switch {
		case failure == nil:
			if data != nil {
				c.state.Data = data
			}
		case failure.Kind == FailureUnauthenticated:
			// Session boundary: data and error are left alone.
		default:
			c.state.Error = Message(failure)
			c.state.Failure = failure
		}
		c.notifyLocked()
	}
	snap := c.state
	c.mu.Unlock()
	if applied && failure != nil && failure.Kind == FailureUnauthenticated {
		// The stored state is untouched; the caller still learns why.
		snap.Failure = failure
	}

	c.client.settle(Settlement{
		Method:   o.method(),
		Path:     path,
		Status:   status,
		Failure:  failure,
		Applied:  applied,
		Duration: time.Since(start),
		At:       start,
	})

	if failure != nil && failure.Kind == FailureUnauthenticated {
		c.client.sessionExpired()
	}
	return snap
}

// notifyLocked calls watchers with the current snapshot. Watchers run with
// the lock held so transitions are delivered in order; they must not call
// back into the controller.
func (c *Controller[T]) notifyLocked() {
	snap := c.state
	for _, fn := range c.watchers {
		fn(snap)
	}
}

// Succeeded reports whether o is a settled outcome without failure.
func Succeeded[T any](o Outcome[T]) bool {
	return !o.Loading && o.Failure == nil
}

// IsStatus reports whether an outcome failed with one of the given HTTP statuses.
func IsStatus(f *Failure, statuses ...int) bool {
	if f == nil || f.Kind != FailureStatus {
		return false
	}
	for _, s := range statuses {
		if f.Status == s {
			return true
		}
	}
	return false
}
