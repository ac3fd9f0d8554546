package httpclient

import (
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/aalemi-dev/calltrace/header"
	"github.com/aalemi-dev/calltrace/interceptor"
	"github.com/aalemi-dev/calltrace/observability"
	"github.com/aalemi-dev/calltrace/view"
)

// Component names of the adapters.
const (
	ComponentNetHTTP   = "net/http"
	ComponentResty     = "resty"
	ComponentRetryable = "retryablehttp"
)

// RestyCall is the argument of an intercepted resty request.
type RestyCall struct {
	Request *resty.Request
	Method  string
	URL     string
}

type (
	httpCall      = interceptor.Call[*http.Request, *http.Response]
	restyCall     = interceptor.Call[*RestyCall, *resty.Response]
	retryableCall = interceptor.Call[*retryablehttp.Request, *http.Response]
)

// RegisterSinks registers the header sinks of the request types used by this
// package with rw. Reflection would find *http.Request and *resty.Request on
// its own; *retryablehttp.Request keeps its headers on an embedded pointer.
func RegisterSinks(rw *header.Rewriter) {
	header.Register(rw, header.Sink[*http.Request]{
		Canonical: true,
		Read:      func(r *http.Request) map[string][]string { return r.Header },
		Install: func(r *http.Request, bag *header.Bag) error {
			r.Header = bag.Map()
			return nil
		},
	})
	header.Register(rw, header.Sink[*resty.Request]{
		Canonical: true,
		Read:      func(r *resty.Request) map[string][]string { return r.Header },
		Install: func(r *resty.Request, bag *header.Bag) error {
			r.Header = bag.Map()
			return nil
		},
	})
	header.Register(rw, header.Sink[*retryablehttp.Request]{
		Canonical: true,
		Read: func(r *retryablehttp.Request) map[string][]string {
			if r.Request == nil {
				return nil
			}
			return r.Header
		},
		Install: func(r *retryablehttp.Request, bag *header.Bag) error {
			if r.Request == nil {
				return ErrNilRequest
			}
			r.Header = bag.Map()
			return nil
		},
	})
}

var (
	httpRequestEx = view.RequestExtractor[*http.Request]{
		Method: func(r *http.Request) string { return r.Method },
		Path:   func(r *http.Request) string { return r.URL.String() },
	}
	httpResponseEx = view.ResponseExtractor[*http.Request, *http.Response]{
		Method:     func(r *http.Request) string { return r.Method },
		StatusCode: func(r *http.Response) int { return r.StatusCode },
		Headers:    func(r *http.Response) map[string][]string { return r.Header },
	}

	restyRequestEx = view.RequestExtractor[*resty.Request]{
		Method: func(r *resty.Request) string { return r.Method },
		Path:   func(r *resty.Request) string { return r.URL },
	}
	restyResponseEx = view.ResponseExtractor[*RestyCall, *resty.Response]{
		Method:     func(c *RestyCall) string { return c.Method },
		StatusCode: func(r *resty.Response) int { return r.StatusCode() },
		Headers:    func(r *resty.Response) map[string][]string { return r.Header() },
	}

	retryableRequestEx = view.RequestExtractor[*retryablehttp.Request]{
		Method: func(r *retryablehttp.Request) string { return r.Method },
		Path:   func(r *retryablehttp.Request) string { return r.URL.String() },
	}
	retryableResponseEx = view.ResponseExtractor[*retryablehttp.Request, *http.Response]{
		Method:     func(r *retryablehttp.Request) string { return r.Method },
		StatusCode: func(r *http.Response) int { return r.StatusCode },
		Headers:    func(r *http.Response) map[string][]string { return r.Header },
	}
)

func httpSpanName(method string) string {
	if method == "" {
		return "HTTP"
	}
	return "HTTP " + method
}

func describeHTTP(resp *http.Response, op *observability.OperationContext) {
	if resp != nil && resp.ContentLength > 0 {
		op.Size = resp.ContentLength
	}
}

type httpAdapter struct {
	rw *header.Rewriter
}

func (httpAdapter) Component() string { return ComponentNetHTTP }

func (httpAdapter) SpanName(call *httpCall) string { return httpSpanName(call.Method) }

func (a httpAdapter) Request(call *httpCall) (view.Request, error) {
	return view.NewRequest(call.Args, httpRequestEx, a.rw)
}

func (httpAdapter) Response(call *httpCall) view.Response {
	return view.NewResponse(call.Args, call.Return, call.Err, httpResponseEx)
}

func (httpAdapter) Describe(call *httpCall, op *observability.OperationContext) {
	describeHTTP(call.Return, op)
}

type restyAdapter struct {
	rw *header.Rewriter
}

func (restyAdapter) Component() string { return ComponentResty }

func (restyAdapter) SpanName(call *restyCall) string { return httpSpanName(call.Method) }

// Request fills in method and URL before building the view: resty only sets
// them once Execute runs.
func (a restyAdapter) Request(call *restyCall) (view.Request, error) {
	r := call.Args.Request
	if r != nil {
		r.Method = call.Args.Method
		r.URL = call.Args.URL
	}
	return view.NewRequest(r, restyRequestEx, a.rw)
}

func (restyAdapter) Response(call *restyCall) view.Response {
	return view.NewResponse(call.Args, call.Return, call.Err, restyResponseEx)
}

func (restyAdapter) Describe(call *restyCall, op *observability.OperationContext) {
	if call.Return == nil {
		return
	}
	describeHTTP(call.Return.RawResponse, op)
	if call.Return.Request != nil {
		op.Metadata = map[string]interface{}{"attempts": call.Return.Request.Attempt}
	}
}

type retryableAdapter struct {
	rw *header.Rewriter
}

func (retryableAdapter) Component() string { return ComponentRetryable }

func (retryableAdapter) SpanName(call *retryableCall) string { return httpSpanName(call.Method) }

func (a retryableAdapter) Request(call *retryableCall) (view.Request, error) {
	return view.NewRequest(call.Args, retryableRequestEx, a.rw)
}

func (retryableAdapter) Response(call *retryableCall) view.Response {
	return view.NewResponse(call.Args, call.Return, call.Err, retryableResponseEx)
}

func (retryableAdapter) Describe(call *retryableCall, op *observability.OperationContext) {
	describeHTTP(call.Return, op)
}
