// Package callctx holds the per-attempt interception state shared by every
// call site that fires during one logical client call.
//
// A Context is created by the outermost host firing and travels in the
// context.Context handed to the real operation, so nested hosts (an
// http.RoundTripper under a resty request, for instance) find the same
// Context and its re-entrancy counters:
//
//	cctx, _ := callctx.Attach(ctx)
//	defer cctx.Leave()
//	if cctx.Enter(httpToken, 1) {
//		// outermost entry, open the span
//	}
//	...
//	if cctx.Out(httpToken, 1) {
//		// outermost exit, finish the span
//	}
//
// Hosts obtain their Context with Attach, which joins the Context in ctx
// only while an operation of that attempt is still running. Contexts handed
// back to callers after an attempt (a consumed message's context, the
// request of a finished response) start a new attempt when reused.
//
// A Context is safe for concurrent use. The finish of an asynchronous call
// moves to the completing goroutine through a forwardlock.Release.
package callctx
