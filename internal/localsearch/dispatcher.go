// Package localsearch coordinates live place completion, authoritative search and
// location tracking for a single search surface.
//
// Provider callbacks arrive on arbitrary goroutines. Everything that mutates session
// state is marshaled through a Dispatcher so it runs on one logical context.
package localsearch

import (
	"context"
	"sync"
)

// Dispatcher runs functions on a single logical execution context.
type Dispatcher interface {
	// Dispatch enqueues fn. It returns false if ctx ends or the dispatcher has stopped first.
	Dispatch(ctx context.Context, fn func()) bool
}

// Loop is a Dispatcher backed by one goroutine draining a function queue.
type Loop struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop creates a loop with the given queue capacity. Call Run to start it.
func NewLoop(capacity int) *Loop {
	if capacity <= 0 {
		capacity = 256
	}
	return &Loop{
		queue: make(chan func(), capacity),
		done:  make(chan struct{}),
	}
}

// Run drains the queue until ctx is canceled.
func (l *Loop) Run(ctx context.Context) {
	defer l.once.Do(func() { close(l.done) })

	for {
		select {
		case fn := <-l.queue:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// Dispatch implements Dispatcher.
func (l *Loop) Dispatch(ctx context.Context, fn func()) bool {
	select {
	case <-l.done:
		return false
	case <-ctx.Done():
		return false
	default:
	}

	select {
	case l.queue <- fn:
		return true
	case <-ctx.Done():
		return false
	case <-l.done:
		return false
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) bool {
	finished := make(chan struct{})
	if !l.Dispatch(ctx, func() {
		defer close(finished)
		fn()
	}) {
		return false
	}

	select {
	case <-finished:
		return true
	case <-ctx.Done():
		return false
	case <-l.done:
		return false
	}
}
