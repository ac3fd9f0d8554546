// Package forwardlock correlates the entry of an intercepted call with its
// exit when the real operation completes on another goroutine.
//
// The host acquires a Release on every firing. Only the outermost firing of an
// attempt gets the owning release; nested firings get secondary releases that
// finish as soon as they exit. An interceptor that sees the call will complete
// asynchronously calls Defer on the owning release and arranges for Complete
// to be called with the asynchronous outcome:
//
//	rel := forwardlock.Acquire(cctx.Lock(), finish)
//	if rel.Defer() {
//		future.OnComplete(rel.Complete)
//	}
//	err := op()
//	rel.Exit(forwardlock.Outcome[R]{Err: err})
//
// finish then runs exactly once. Without Defer, or when the operation failed
// before the hand-off, it runs inside Exit. With Defer, it runs once both Exit
// and Complete have happened, on whichever goroutine arrives second, with the
// asynchronous outcome.
//
// Future is the promise returned to callers of asynchronous operations.
package forwardlock
