package dispatcher

import (
	"context"
	"sync"
)

// Promise represents the eventual outcome of a compound dispatch
type Promise struct {
	done  chan struct{}
	value interface{}
	err   error
	once  sync.Once
}

func newPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

func (p *Promise) settle(value interface{}, err error) {
	p.once.Do(func() {
		p.value, p.err = value, err
		close(p.done)
	})
}

// Done returns a channel closed once the promise settled
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// Settled returns true if the promise settled
func (p *Promise) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the promise settles or ctx is done
func (p *Promise) Wait(ctx context.Context) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Value returns the resolved value, nil while pending or when rejected
func (p *Promise) Value() interface{} {
	if !p.Settled() {
		return nil
	}
	return p.value
}

// Err returns the rejection error, nil while pending or when resolved
func (p *Promise) Err() error {
	if !p.Settled() {
		return nil
	}
	return p.err
}

// Then calls fn on its own goroutine once the promise settles
func (p *Promise) Then(fn func(value interface{}, err error)) {
	go func() {
		<-p.done
		fn(p.value, p.err)
	}()
}

// Resolved returns a settled promise
func Resolved(value interface{}, err error) *Promise {
	ret := newPromise()
	ret.settle(value, err)
	return ret
}

// Await waits for a dispatch result when it is a promise, other results are returned as is
func Await(ctx context.Context, result interface{}) (interface{}, error) {
	if promise, ok := result.(*Promise); ok {
		return promise.Wait(ctx)
	}
	return result, nil
}
