package forwardlock

import (
	"sync"
	"sync/atomic"
	"time"
)

// Outcome is the result of an intercepted call.
type Outcome[R any] struct {
	Value R
	Err   error
	// At is when the outcome became known. Zero means "now" when it is recorded.
	At time.Time
}

// ForwardLock marks whether an attempt already has an owning release.
// The zero value is ready to use.
type ForwardLock struct {
	held atomic.Bool
}

// Held reports whether an owning release is outstanding.
func (l *ForwardLock) Held() bool {
	return l.held.Load()
}

// Release is the token passed from the entry of an intercepted call to its exit.
type Release[R any] struct {
	lock   *ForwardLock
	owner  bool
	finish func(Outcome[R])

	mu        sync.Mutex
	deferred  bool
	exited    bool
	completed bool
	finished  bool
	outcome   Outcome[R]
}

// Acquire returns the owning release if l has none outstanding and a secondary
// release otherwise. A nil lock always yields an owning release.
// finish may be nil.
//
// finish runs once, after Exit and, for a deferred owner, after Complete as
// well. The owning release frees l when finish returns.
//
// Example:
//
//	rel := forwardlock.Acquire(cctx.Lock(), func(o forwardlock.Outcome[*http.Response]) {
//	    span.End()
//	})
//	resp, err := next(ctx)
//	if rel.Owner() && async {
//	    rel.Defer()
//	}
//	rel.Exit(forwardlock.Outcome[*http.Response]{Value: resp, Err: err})
func Acquire[R any](l *ForwardLock, finish func(Outcome[R])) *Release[R] {
	owner := l == nil || l.held.CompareAndSwap(false, true)
	return &Release[R]{lock: l, owner: owner, finish: finish}
}

// Owner reports whether r is the owning release of its attempt.
func (r *Release[R]) Owner() bool {
	return r.owner
}

// Defer marks the call as completing asynchronously. It reports whether the
// hand-off was accepted; secondary releases and releases that already exited
// refuse it.
func (r *Release[R]) Defer() bool {
	if !r.owner {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exited || r.finished {
		return false
	}
	r.deferred = true
	return true
}

// Deferred reports whether Defer was accepted.
func (r *Release[R]) Deferred() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deferred
}

// Finished reports whether finish has run.
func (r *Release[R]) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

// Complete records the asynchronous outcome. Only the first call counts, and
// calls on a release that was not deferred are ignored.
func (r *Release[R]) Complete(o Outcome[R]) {
	if o.At.IsZero() {
		o.At = time.Now()
	}
	r.mu.Lock()
	if !r.deferred || r.completed || r.finished {
		r.mu.Unlock()
		return
	}
	r.completed = true
	r.outcome = o
	if !r.exited {
		r.mu.Unlock()
		return
	}
	r.finished = true
	r.mu.Unlock()
	r.run(o)
}

// Exit is called once by the host when the intercepted call returns on the
// entry goroutine. o is the synchronous outcome; a non-nil o.Err means the
// asynchronous hand-off never happened and the call finishes now.
func (r *Release[R]) Exit(o Outcome[R]) {
	if o.At.IsZero() {
		o.At = time.Now()
	}
	r.mu.Lock()
	if r.exited || r.finished {
		r.mu.Unlock()
		return
	}
	r.exited = true
	switch {
	case !r.deferred || o.Err != nil:
	case r.completed:
		o = r.outcome
	default:
		r.mu.Unlock()
		return
	}
	r.finished = true
	r.mu.Unlock()
	r.run(o)
}

func (r *Release[R]) run(o Outcome[R]) {
	if r.owner && r.lock != nil {
		defer r.lock.held.Store(false)
	}
	if r.finish != nil {
		r.finish(o)
	}
}
