package tracer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aalemi-dev/calltrace/callctx"
	"github.com/aalemi-dev/calltrace/view"
)

// Scope makes a span the active span of an attempt Context and restores the
// previously active context on Close.
type Scope struct {
	cctx *callctx.Context
	prev context.Context
	once sync.Once
}

// Activate makes span the active span of cctx. The span must be started.
func Activate(cctx *callctx.Context, span Span) *Scope {
	s := &Scope{cctx: cctx, prev: cctx.Ctx()}
	cctx.SetCtx(span.Context())
	return s
}

// Close restores the context that was active before the scope opened.
// It is safe to call more than once.
func (s *Scope) Close() {
	s.once.Do(func() {
		s.cctx.SetCtx(s.prev)
	})
}

// ProgressContext is an in-flight intercepted call: its span, its scope, and
// the request it was opened for.
type ProgressContext struct {
	span    Span
	scope   *Scope
	request view.Request
}

// NextProgress starts a span named name for req, parented on the active
// context of cctx, tags it with the request attributes, and activates it.
// An empty name defaults to "<METHOD> <path>".
func (t *TracerClient) NextProgress(cctx *callctx.Context, req view.Request, name string) *ProgressContext {
	if name == "" {
		name = spanName(req)
	}
	span := t.newSpan(cctx.Ctx(), name, req.Kind())
	span.Tag(TagSpanKind, req.Kind().String())
	span.Tag(TagAttemptID, cctx.ID())
	if m := req.Method(); m != "" {
		span.Tag(TagHTTPMethod, m)
	}
	if p := req.Path(); p != "" {
		span.Tag(TagHTTPURL, p)
	}
	if r := req.Route(); r != "" {
		span.Tag(TagHTTPRoute, r)
	}
	span.Start()

	return &ProgressContext{
		span:    span,
		scope:   Activate(cctx, span),
		request: req,
	}
}

func spanName(req view.Request) string {
	switch {
	case req.Method() != "" && req.Path() != "":
		return req.Method() + " " + req.Path()
	case req.Method() != "":
		return req.Method()
	default:
		return "call"
	}
}

// Span returns the span of the call.
func (p *ProgressContext) Span() Span {
	return p.span
}

// Scope returns the scope opened for the span.
func (p *ProgressContext) Scope() *Scope {
	return p.scope
}

// Request returns the request view the call was opened for.
func (p *ProgressContext) Request() view.Request {
	return p.request
}

// Context returns the context carrying the call's span.
func (p *ProgressContext) Context() context.Context {
	return p.span.Context()
}

// Finish records resp on the span and finishes it now.
func (p *ProgressContext) Finish(resp view.Response) {
	p.FinishAt(resp, time.Now())
}

// FinishAt records resp on the span and finishes it at ts. resp may be nil.
// An error from resp.MaybeError wins over a failure status code.
func (p *ProgressContext) FinishAt(resp view.Response, ts time.Time) {
	if resp != nil {
		status := resp.StatusCode()
		if status > 0 {
			p.span.SetAttributes(map[string]interface{}{TagHTTPStatusCode: status})
		}
		if r := resp.Route(); r != "" {
			p.span.Tag(TagHTTPRoute, r)
		}
		if err := resp.MaybeError(); err != nil {
			p.span.RecordError(err)
		} else if status >= 400 {
			p.span.MarkFailed(fmt.Sprintf("status code %d", status))
		}
	}
	p.span.FinishAt(ts)
}
