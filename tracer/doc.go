// Package tracer creates the spans of intercepted calls on top of the
// OpenTelemetry SDK and propagates their context through request headers.
//
// # Spans
//
// Span separates creation from Start so an interceptor can tag a span before
// it begins. A span starts at most once and finishes at most once; FinishAt
// lets the finish timestamp be the moment an asynchronous call completed
// rather than the moment the finishing code ran.
//
// # Progress contexts
//
// NextProgress is the entry point used by interceptors. It opens a span for a
// view.Request under the active context of a callctx.Context, tags it with the
// request attributes and activates it:
//
//	pc := tracerClient.NextProgress(cctx, req, "")
//	tracerClient.Inject(pc.Context(), req)
//	...
//	defer pc.Scope().Close()
//	pc.Finish(resp)
//
// Finish reads the response view: the status code is recorded, an error from
// MaybeError marks the span failed, and a status of 400 or more marks it
// failed when there is no error.
//
// # Propagation
//
// Inject and Extract use the W3C trace-context and baggage propagators over any
// view.HeaderWriter or view.HeaderReader. GetCarrier and SetCarrierOnContext
// do the same over a plain map.
//
// # Export
//
// With Config.EnableExport the spans are batched to an OTLP HTTP collector.
// Tests attach a tracetest.SpanRecorder with WithSpanProcessor.
package tracer
