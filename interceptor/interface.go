package interceptor

import (
	"context"
	"time"

	"github.com/aalemi-dev/calltrace/callctx"
	"github.com/aalemi-dev/calltrace/forwardlock"
	"github.com/aalemi-dev/calltrace/observability"
	"github.com/aalemi-dev/calltrace/view"
)

// Call describes one firing of an intercepted call. A is the type of the
// call's arguments and R the type of its result.
type Call[A, R any] struct {
	// Method names the intercepted operation, e.g. "GET" or "produce".
	Method string

	// Args are the call's arguments. Before hooks may replace or mutate them
	// before the real operation runs.
	Args A

	// Return and Err are set before After runs.
	Return R
	Err    error

	// CompletedAt is when the outcome became known. For asynchronous calls it
	// is the completion time, not the time the host returned.
	CompletedAt time.Time

	// Release correlates this firing's entry with its exit.
	Release *forwardlock.Release[R]
}

// Interceptor is a before/after hook pair.
type Interceptor[A, R any] interface {
	Before(call *Call[A, R], cctx *callctx.Context)
	After(call *Call[A, R], cctx *callctx.Context)
}

// Funcs adapts a pair of functions to the Interceptor interface. Nil funcs are skipped.
type Funcs[A, R any] struct {
	BeforeFunc func(call *Call[A, R], cctx *callctx.Context)
	AfterFunc  func(call *Call[A, R], cctx *callctx.Context)
}

func (f Funcs[A, R]) Before(call *Call[A, R], cctx *callctx.Context) {
	if f.BeforeFunc != nil {
		f.BeforeFunc(call, cctx)
	}
}

func (f Funcs[A, R]) After(call *Call[A, R], cctx *callctx.Context) {
	if f.AfterFunc != nil {
		f.AfterFunc(call, cctx)
	}
}

// Adapter connects Tracing to a client library.
type Adapter[A, R any] interface {
	// Component names the adapter; it tags spans and observed operations.
	Component() string

	// SpanName returns the span name, or "" for "<METHOD> <path>".
	SpanName(call *Call[A, R]) string

	// Request returns the view of the outgoing request. It may rewrite
	// call.Args so that header changes reach the real operation. A non-nil
	// error means headers cannot be propagated; the view is still used.
	Request(call *Call[A, R]) (view.Request, error)

	// Response returns the view of the completed call.
	Response(call *Call[A, R]) view.Response
}

// AsyncAdapter is implemented by adapters of calls that complete on another goroutine.
type AsyncAdapter[A, R any] interface {
	Adapter[A, R]

	// HandOff defers call.Release and arranges for it to be completed when
	// the call completes. It reports whether the hand-off was arranged.
	HandOff(call *Call[A, R]) bool
}

// Describer is implemented by adapters that add detail to observed operations.
type Describer[A, R any] interface {
	Describe(call *Call[A, R], op *observability.OperationContext)
}

// Logger is the subset of logger.Logger used by this package.
type Logger interface {
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
