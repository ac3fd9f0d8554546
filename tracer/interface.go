package tracer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/aalemi-dev/calltrace/callctx"
	"github.com/aalemi-dev/calltrace/view"
)

// Tracer is the tracing collaborator of the interceptors.
//
// This interface is implemented by the concrete *TracerClient type.
type Tracer interface {
	// StartSpan creates and starts a span parented on ctx.
	// Call span.End() when the operation completes.
	StartSpan(ctx context.Context, name string) (context.Context, Span)

	// GetCarrier returns the propagation headers for the span in ctx.
	GetCarrier(ctx context.Context) map[string]string

	// SetCarrierOnContext returns ctx with the remote span context found in carrier.
	SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context

	// Inject writes the propagation headers for the span in ctx into w.
	Inject(ctx context.Context, w view.HeaderWriter)

	// Extract returns ctx with the remote span context found in r.
	Extract(ctx context.Context, r view.HeaderReader) context.Context

	// NextProgress opens a span for req under the active context of cctx and
	// makes it the active span of cctx until the returned scope is closed.
	NextProgress(cctx *callctx.Context, req view.Request, name string) *ProgressContext
}

// Span is one traced operation.
//
// A span is started at most once and finished at most once. Tags set before
// Start are applied when the span starts; Finish on a span that never started
// does nothing.
type Span interface {
	// Start records the start timestamp. Later calls do nothing.
	Start() Span

	// Tag sets a string attribute.
	Tag(key, value string) Span

	// SetAttributes sets attributes of type string, int, int64, float64 or bool;
	// other values are stored with fmt.Sprint.
	SetAttributes(attrs map[string]interface{})

	// RecordError records err as an exception event and marks the span failed.
	RecordError(err error)

	// MarkFailed marks the span failed without an exception, e.g. for a 5xx response.
	MarkFailed(description string)

	// Finish records the finish timestamp as now.
	Finish()

	// FinishAt records the finish timestamp as ts.
	FinishAt(ts time.Time)

	// End is Finish, for use with defer.
	End()

	Started() bool
	Finished() bool
	StartTime() time.Time
	FinishTime() time.Time

	// SpanContext identifies the span; it is invalid before Start.
	SpanContext() trace.SpanContext

	// Context is the parent context with the span attached once started.
	Context() context.Context
}
