package httpclient

import (
	"context"
	"net/http"

	"github.com/aalemi-dev/calltrace/interceptor"
)

// Transport is an instrumented http.RoundTripper.
type Transport struct {
	base   http.RoundTripper
	client *HTTPClient
}

// RoundTrip traces req and sends a clone of it through the base transport.
// The caller's request is never modified, and the response points back to it
// rather than to the traced clone.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	call := &httpCall{Method: req.Method, Args: req.Clone(req.Context())}
	return interceptor.Invoke(req.Context(), t.client.httpChain, call, func(ctx context.Context, call *httpCall) (*http.Response, error) {
		resp, err := t.base.RoundTrip(call.Args.WithContext(ctx))
		if resp != nil {
			resp.Request = req
		}
		return resp, err
	})
}

// CloseIdleConnections closes idle connections of the base transport.
func (t *Transport) CloseIdleConnections() {
	type closeIdler interface{ CloseIdleConnections() }
	if ci, ok := t.base.(closeIdler); ok {
		ci.CloseIdleConnections()
	}
}
