package interceptor

import (
	"time"

	"github.com/aalemi-dev/calltrace/callctx"
	"github.com/aalemi-dev/calltrace/observability"
	"github.com/aalemi-dev/calltrace/tracer"
)

// TracingOption configures a Tracing interceptor.
type TracingOption func(*tracingOptions)

type tracingOptions struct {
	token    *callctx.Token
	observer observability.Observer
	logger   Logger
}

// WithToken sets the re-entrancy token. Tracing interceptors of call sites
// that can nest inside each other for one logical call must share a token so
// that only the outermost one produces a span.
func WithToken(token *callctx.Token) TracingOption {
	return func(o *tracingOptions) { o.token = token }
}

// WithObserver reports every traced call to observer after its span finished.
func WithObserver(observer observability.Observer) TracingOption {
	return func(o *tracingOptions) { o.observer = observer }
}

// WithLogger logs header propagation failures and traced calls through l.
func WithLogger(l Logger) TracingOption {
	return func(o *tracingOptions) { o.logger = l }
}

// Tracing is the interceptor that traces calls described by an Adapter.
type Tracing[A, R any] struct {
	tracer   tracer.Tracer
	adapter  Adapter[A, R]
	token    *callctx.Token
	observer observability.Observer
	logger   Logger
	progress *callctx.Key[*tracer.ProgressContext]
}

// NewTracing returns a tracing interceptor for adapter.
func NewTracing[A, R any](t tracer.Tracer, adapter Adapter[A, R], opts ...TracingOption) *Tracing[A, R] {
	o := tracingOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.token == nil {
		o.token = callctx.NewToken(adapter.Component())
	}
	return &Tracing[A, R]{
		tracer:   t,
		adapter:  adapter,
		token:    o.token,
		observer: o.observer,
		logger:   o.logger,
		progress: callctx.NewKey[*tracer.ProgressContext](adapter.Component() + ".progress"),
	}
}

// Token returns the re-entrancy token of the interceptor.
func (t *Tracing[A, R]) Token() *callctx.Token {
	return t.token
}

// Before opens the span of the call on the outermost entry.
func (t *Tracing[A, R]) Before(call *Call[A, R], cctx *callctx.Context) {
	if !cctx.Enter(t.token, 1) {
		return
	}

	req, err := t.adapter.Request(call)
	if err != nil && t.logger != nil {
		t.logger.WarnWithContext(cctx.Ctx(), "trace headers will not be propagated", err, map[string]interface{}{
			"component":  t.adapter.Component(),
			"attempt_id": cctx.ID(),
		})
	}

	pc := t.tracer.NextProgress(cctx, req, t.adapter.SpanName(call))
	pc.Span().Tag(tracer.TagComponent, t.adapter.Component())
	t.tracer.Inject(pc.Context(), req)
	callctx.Set(cctx, t.progress, pc)

	if async, ok := t.adapter.(AsyncAdapter[A, R]); ok && call.Release != nil {
		async.HandOff(call)
	}
}

// After finishes the span of the call on the outermost exit.
func (t *Tracing[A, R]) After(call *Call[A, R], cctx *callctx.Context) {
	if !cctx.Out(t.token, 1) {
		return
	}

	pc, ok := callctx.Delete(cctx, t.progress)
	if !ok {
		return
	}
	defer pc.Scope().Close()

	at := call.CompletedAt
	if at.IsZero() {
		at = time.Now()
	}
	resp := t.adapter.Response(call)
	pc.FinishAt(resp, at)

	op := observability.OperationContext{
		Component: t.adapter.Component(),
		Operation: call.Method,
		Resource:  pc.Request().Path(),
		AttemptID: cctx.ID(),
		Duration:  at.Sub(pc.Span().StartTime()),
	}
	if resp != nil {
		op.StatusCode = resp.StatusCode()
		op.Error = resp.MaybeError()
	}
	if d, ok := t.adapter.(Describer[A, R]); ok {
		d.Describe(call, &op)
	}

	if t.logger != nil {
		t.logger.DebugWithContext(pc.Context(), "call traced", op.Error, map[string]interface{}{
			"component":   op.Component,
			"operation":   op.Operation,
			"resource":    op.Resource,
			"status_code": op.StatusCode,
			"duration_ms": op.Duration.Milliseconds(),
			"attempt_id":  op.AttemptID,
		})
	}
	if t.observer != nil {
		t.observer.ObserveOperation(op)
	}
}
