package view

import (
	"net/textproto"
	"reflect"

	"github.com/aalemi-dev/calltrace/header"
)

// RequestExtractor reads request attributes from a library request type R.
// Nil funcs yield empty values.
type RequestExtractor[R any] struct {
	Kind   Kind
	Method func(req R) string
	Path   func(req R) string
	Route  func(req R) string
}

// ResponseExtractor reads response attributes from a library request type R
// and response type S. The funcs are never called with a nil response.
type ResponseExtractor[R, S any] struct {
	Method     func(req R) string
	Route      func(req R, resp S) string
	StatusCode func(resp S) int
	Headers    func(resp S) map[string][]string
}

type request[R any] struct {
	req    R
	nilReq bool
	ex     RequestExtractor[R]
	bag    *header.Bag
}

// NewRequest returns the view of req. Its headers are rewritten through rw
// (header.Default when nil). When rw cannot rewrite them the view is still
// returned, SetHeader becomes a no-op, and the error is returned for the
// caller to log.
func NewRequest[R any](req R, ex RequestExtractor[R], rw *header.Rewriter) (Request, error) {
	if rw == nil {
		rw = header.Default
	}
	bag, err := rw.Rewrite(req)
	return &request[R]{req: req, nilReq: isNil(req), ex: ex, bag: bag}, err
}

func (r *request[R]) Kind() Kind {
	return r.ex.Kind
}

func (r *request[R]) Method() string {
	if r.nilReq {
		return ""
	}
	return call(r.ex.Method, r.req)
}

func (r *request[R]) Path() string {
	if r.nilReq {
		return ""
	}
	return call(r.ex.Path, r.req)
}

func (r *request[R]) Route() string {
	if r.nilReq {
		return ""
	}
	return call(r.ex.Route, r.req)
}

func (r *request[R]) Header(name string) string {
	if r.bag == nil {
		return ""
	}
	return r.bag.Get(name)
}

func (r *request[R]) SetHeader(name, value string) {
	if r.bag == nil {
		return
	}
	r.bag.Add(name, value)
}

// Unwrap returns the library request behind v, if v was built by NewRequest for R.
func Unwrap[R any](v Request) (R, bool) {
	if r, ok := v.(*request[R]); ok {
		return r.req, true
	}
	var zero R
	return zero, false
}

type response[R, S any] struct {
	req     R
	resp    S
	hasResp bool
	err     error
	ex      ResponseExtractor[R, S]
}

// NewResponse returns the view of a completed call. resp may be nil, in
// which case StatusCode is 0 and headers are empty.
func NewResponse[R, S any](req R, resp S, err error, ex ResponseExtractor[R, S]) Response {
	return &response[R, S]{req: req, resp: resp, hasResp: !isNil(resp), err: err, ex: ex}
}

func (r *response[R, S]) Method() string {
	if isNil(r.req) {
		return ""
	}
	return call(r.ex.Method, r.req)
}

func (r *response[R, S]) Route() string {
	if r.ex.Route == nil || !r.hasResp || isNil(r.req) {
		return ""
	}
	return r.ex.Route(r.req, r.resp)
}

func (r *response[R, S]) StatusCode() int {
	if r.ex.StatusCode == nil || !r.hasResp {
		return 0
	}
	return r.ex.StatusCode(r.resp)
}

func (r *response[R, S]) Header(name string) string {
	if r.ex.Headers == nil || !r.hasResp {
		return ""
	}
	return firstValue(r.ex.Headers(r.resp), name)
}

func (r *response[R, S]) MaybeError() error {
	return r.err
}

func call[R any](fn func(R) string, req R) string {
	if fn == nil {
		return ""
	}
	return fn(req)
}

func firstValue(m map[string][]string, name string) string {
	vs, ok := m[name]
	if !ok {
		vs = m[textproto.CanonicalMIMEHeaderKey(name)]
	}
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
