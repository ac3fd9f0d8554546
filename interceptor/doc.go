// Package interceptor runs before/after hooks around intercepted client calls
// and provides the tracing interceptor built on top of them.
//
// # Hosts
//
// A host is the code that owns a call site: an http.RoundTripper, a wrapper
// around a client library's execute method, a producer's publish method. It
// describes the call with a Call and hands it to Invoke together with the real
// operation:
//
//	call := &interceptor.Call[*http.Request, *http.Response]{Method: req.Method, Args: req}
//	resp, err := interceptor.Invoke(req.Context(), chain, call,
//		func(ctx context.Context, call *interceptor.Call[*http.Request, *http.Response]) (*http.Response, error) {
//			return base.RoundTrip(call.Args.WithContext(ctx))
//		})
//
// Invoke finds the attempt Context in ctx or creates one, fires Before, runs
// the operation with the attempt's active context, and fires After. The
// operation's result and error are returned unchanged. When the operation
// panics, After sees ErrOperationPanic and the panic continues.
//
// Hosts nested inside the operation of another host share its attempt Context
// because the operation runs with a context that carries it.
//
// # Asynchronous calls
//
// Before may call call.Release.Defer when the real operation completes later
// on another goroutine, and arrange for call.Release.Complete to be called
// with the outcome. After then runs once, with the asynchronous outcome in
// call.Return, call.Err and call.CompletedAt, on whichever goroutine observes
// both the host's return and the completion.
//
// # Tracing
//
// Tracing opens a span for the outermost firing of a call, injects the trace
// headers into the outgoing request, and finishes the span from the response
// view on the matching exit.
package interceptor
