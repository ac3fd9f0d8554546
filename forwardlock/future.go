package forwardlock

import (
	"context"
	"sync"
	"time"
)

// Future is a value that becomes available once an asynchronous call completes.
type Future[R any] struct {
	mu        sync.Mutex
	done      chan struct{}
	completed bool
	outcome   Outcome[R]
	callbacks []func(Outcome[R])
}

// NewFuture returns a pending future.
func NewFuture[R any]() *Future[R] {
	return &Future[R]{done: make(chan struct{})}
}

// Complete resolves the future and runs the registered callbacks on the
// calling goroutine, in registration order. Only the first call has an effect;
// it reports whether this call resolved the future.
func (f *Future[R]) Complete(v R, err error) bool {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return false
	}
	f.completed = true
	f.outcome = Outcome[R]{Value: v, Err: err, At: time.Now()}
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, fn := range callbacks {
		fn(f.outcome)
	}
	return true
}

// OnComplete registers fn to run when the future resolves. If it already has,
// fn runs immediately on the calling goroutine.
func (f *Future[R]) OnComplete(fn func(Outcome[R])) {
	f.mu.Lock()
	if !f.completed {
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	}
	o := f.outcome
	f.mu.Unlock()
	fn(o)
}

// Done is closed when the future resolves.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// Outcome returns the outcome and whether the future has resolved.
func (f *Future[R]) Outcome() (Outcome[R], bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcome, f.completed
}

// Result returns the value and error without blocking, or ErrPending.
func (f *Future[R]) Result() (R, error) {
	o, ok := f.Outcome()
	if !ok {
		var zero R
		return zero, ErrPending
	}
	return o.Value, o.Err
}

// Await blocks until the future resolves or ctx is done.
func (f *Future[R]) Await(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.Result()
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}
