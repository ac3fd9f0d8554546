package tracer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/aalemi-dev/calltrace/view"
)

type spanImpl struct {
	tracer trace.Tracer
	name   string
	kind   view.Kind

	mu         sync.Mutex
	ctx        context.Context
	span       trace.Span
	pending    []attribute.KeyValue
	pendingErr []error
	failed     string
	started    bool
	finished   bool
	startedAt  time.Time
	finishedAt time.Time
}

func (t *TracerClient) newSpan(parent context.Context, name string, kind view.Kind) *spanImpl {
	if parent == nil {
		parent = context.Background()
	}
	return &spanImpl{tracer: t.tracer, name: name, kind: kind, ctx: parent}
}

func spanKind(k view.Kind) trace.SpanKind {
	if k == view.KindServer {
		return trace.SpanKindServer
	}
	return trace.SpanKindClient
}

func (s *spanImpl) Start() Span {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return s
	}
	s.started = true
	s.startedAt = time.Now()
	s.ctx, s.span = s.tracer.Start(s.ctx, s.name,
		trace.WithSpanKind(spanKind(s.kind)),
		trace.WithTimestamp(s.startedAt),
		trace.WithAttributes(s.pending...),
	)
	s.pending = nil
	for _, err := range s.pendingErr {
		s.recordError(err)
	}
	s.pendingErr = nil
	if s.failed != "" {
		s.span.SetStatus(codes.Error, s.failed)
	}
	return s
}

func (s *spanImpl) setAttributes(kvs ...attribute.KeyValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.finished:
	case !s.started:
		s.pending = append(s.pending, kvs...)
	default:
		s.span.SetAttributes(kvs...)
	}
}

func (s *spanImpl) Tag(key, value string) Span {
	s.setAttributes(attribute.String(key, value))
	return s
}

func (s *spanImpl) SetAttributes(attrs map[string]interface{}) {
	if len(attrs) == 0 {
		return
	}

	attributes := make([]attribute.KeyValue, 0, len(attrs))

	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			attributes = append(attributes, attribute.String(k, val))
		case int:
			attributes = append(attributes, attribute.Int(k, val))
		case int64:
			attributes = append(attributes, attribute.Int64(k, val))
		case float64:
			attributes = append(attributes, attribute.Float64(k, val))
		case bool:
			attributes = append(attributes, attribute.Bool(k, val))
		default:
			attributes = append(attributes, attribute.String(k, fmt.Sprint(val)))
		}
	}

	s.setAttributes(attributes...)
}

func (s *spanImpl) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.finished:
	case !s.started:
		s.pendingErr = append(s.pendingErr, err)
	default:
		s.recordError(err)
	}
}

func (s *spanImpl) recordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
	s.span.SetAttributes(attribute.Bool(TagError, true))
}

func (s *spanImpl) MarkFailed(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.finished:
	case !s.started:
		s.failed = description
	default:
		s.span.SetStatus(codes.Error, description)
		s.span.SetAttributes(attribute.Bool(TagError, true))
	}
}

func (s *spanImpl) Finish() {
	s.FinishAt(time.Now())
}

func (s *spanImpl) FinishAt(ts time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || s.finished {
		return
	}
	s.finished = true
	s.finishedAt = ts
	s.span.End(trace.WithTimestamp(ts))
}

func (s *spanImpl) End() {
	s.Finish()
}

func (s *spanImpl) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

func (s *spanImpl) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

func (s *spanImpl) StartTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

func (s *spanImpl) FinishTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishedAt
}

func (s *spanImpl) SpanContext() trace.SpanContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.span == nil {
		return trace.SpanContext{}
	}
	return s.span.SpanContext()
}

func (s *spanImpl) Context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// StartSpan creates and starts a client span named name, parented on ctx.
//
// Example:
//
//	ctx, span := tracerClient.StartSpan(ctx, "reconcile-deliveries")
//	defer span.End()
func (t *TracerClient) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	s := t.newSpan(ctx, name, view.KindClient)
	s.Start()
	return s.Context(), s
}

// GetCarrier returns the propagation headers of the span in ctx.
func (t *TracerClient) GetCarrier(ctx context.Context) map[string]string {
	carrier := propagation.MapCarrier{}
	t.propagator.Inject(ctx, carrier)
	return carrier
}

// SetCarrierOnContext returns ctx with the remote span context found in carrier.
func (t *TracerClient) SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context {
	return t.propagator.Extract(ctx, propagation.MapCarrier(carrier))
}

// headerCarrier adapts view headers to propagation.TextMapCarrier.
type headerCarrier struct {
	r view.HeaderReader
	w view.HeaderWriter
}

func (c headerCarrier) Get(key string) string {
	if c.r == nil {
		return ""
	}
	return c.r.Header(key)
}

func (c headerCarrier) Set(key, value string) {
	if c.w != nil {
		c.w.SetHeader(key, value)
	}
}

// Keys is not needed by the trace-context and baggage propagators.
func (c headerCarrier) Keys() []string {
	return nil
}

// Inject writes the propagation headers of the span in ctx into w.
func (t *TracerClient) Inject(ctx context.Context, w view.HeaderWriter) {
	if w == nil {
		return
	}
	r, _ := w.(view.HeaderReader)
	t.propagator.Inject(ctx, headerCarrier{r: r, w: w})
}

// Extract returns ctx with the remote span context found in r.
func (t *TracerClient) Extract(ctx context.Context, r view.HeaderReader) context.Context {
	if r == nil {
		return ctx
	}
	return t.propagator.Extract(ctx, headerCarrier{r: r})
}
