package interceptor

import (
	"context"
	"fmt"

	"github.com/aalemi-dev/calltrace/callctx"
	"github.com/aalemi-dev/calltrace/forwardlock"
)

// Operation is the real call behind a host. ctx is the attempt's active
// context and carries the attempt Context for nested hosts.
type Operation[A, R any] func(ctx context.Context, call *Call[A, R]) (R, error)

// Invoke fires chain around op and returns op's result and error.
//
// The call joins the attempt found in ctx only while an operation of that
// attempt is still running, which is the case for hosts nested inside op.
// Otherwise it starts a new attempt, even when ctx came out of an earlier
// traced call.
//
// For synchronous calls After runs before Invoke returns. When an interceptor
// deferred call.Release, After runs once the asynchronous outcome arrives and
// Invoke returns the synchronous result without waiting.
//
// Example:
//
//	call := &interceptor.Call[*http.Request, *http.Response]{Method: req.Method, Args: req}
//	resp, err := interceptor.Invoke(req.Context(), chain, call,
//		func(ctx context.Context, call *interceptor.Call[*http.Request, *http.Response]) (*http.Response, error) {
//			return base.RoundTrip(call.Args.WithContext(ctx))
//		})
func Invoke[A, R any](ctx context.Context, chain *Chain[A, R], call *Call[A, R], op Operation[A, R]) (R, error) {
	cctx, _ := callctx.Attach(ctx)
	running := true
	leave := func() {
		if running {
			running = false
			cctx.Leave()
		}
	}

	rel := forwardlock.Acquire(cctx.Lock(), func(o forwardlock.Outcome[R]) {
		call.Return, call.Err = o.Value, o.Err
		call.CompletedAt = o.At
		chain.After(call, cctx)
	})
	call.Release = rel

	chain.Before(call, cctx)

	exited := false
	defer func() {
		if exited {
			return
		}
		leave()
		if p := recover(); p != nil {
			rel.Exit(forwardlock.Outcome[R]{Err: fmt.Errorf("%w: %v", ErrOperationPanic, p)})
			panic(p)
		}
	}()

	ret, err := op(cctx.Ctx(), call)
	exited = true
	leave()

	// After a deferred Exit the completing goroutine owns call and cctx.
	rel.Exit(forwardlock.Outcome[R]{Value: ret, Err: err})
	return ret, err
}
