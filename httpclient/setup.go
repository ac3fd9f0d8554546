package httpclient

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/aalemi-dev/calltrace/callctx"
	"github.com/aalemi-dev/calltrace/header"
	"github.com/aalemi-dev/calltrace/interceptor"
	"github.com/aalemi-dev/calltrace/observability"
	"github.com/aalemi-dev/calltrace/tracer"
)

// HTTPClient owns the interceptor chains of the HTTP hosts and builds
// instrumented net/http, resty and retryablehttp clients.
//
// All hosts share one re-entrancy token, so a resty or retryablehttp call
// that ends up in the instrumented Transport produces a single span.
type HTTPClient struct {
	cfg    Config
	logger Logger
	rw     *header.Rewriter
	token  *callctx.Token
	shared *Transport

	httpChain      *interceptor.Chain[*http.Request, *http.Response]
	restyChain     *interceptor.Chain[*RestyCall, *resty.Response]
	retryableChain *interceptor.Chain[*retryablehttp.Request, *http.Response]
}

// Option configures an HTTPClient.
type Option func(*options)

type options struct {
	logger   Logger
	observer observability.Observer
	rw       *header.Rewriter
}

// WithLogger logs propagation failures, traced calls and retries through l.
func WithLogger(l Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver reports every traced HTTP call to observer.
func WithObserver(observer observability.Observer) Option {
	return func(o *options) { o.observer = observer }
}

// WithRewriter sets the header rewriter. The package sinks are registered on it.
func WithRewriter(rw *header.Rewriter) Option {
	return func(o *options) { o.rw = rw }
}

// NewClient returns an HTTPClient tracing through t.
func NewClient(cfg Config, t tracer.Tracer, opts ...Option) *HTTPClient {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rw == nil {
		var hl header.Logger
		if o.logger != nil {
			hl = o.logger
		}
		o.rw = header.NewRewriter(header.WithLogger(hl))
	}
	RegisterSinks(o.rw)

	c := &HTTPClient{
		cfg:    cfg,
		logger: o.logger,
		rw:     o.rw,
		token:  callctx.NewToken("httpclient"),
	}
	c.shared = &Transport{base: cleanhttp.DefaultPooledTransport(), client: c}

	var il interceptor.Logger
	if o.logger != nil {
		il = o.logger
	}
	tracingOpts := []interceptor.TracingOption{
		interceptor.WithToken(c.token),
		interceptor.WithLogger(il),
	}
	if o.observer != nil {
		tracingOpts = append(tracingOpts, interceptor.WithObserver(o.observer))
	}

	c.httpChain = interceptor.NewChain[*http.Request, *http.Response](il,
		interceptor.NewTracing[*http.Request, *http.Response](t, httpAdapter{rw: c.rw}, tracingOpts...))
	c.restyChain = interceptor.NewChain[*RestyCall, *resty.Response](il,
		interceptor.NewTracing[*RestyCall, *resty.Response](t, restyAdapter{rw: c.rw}, tracingOpts...))
	c.retryableChain = interceptor.NewChain[*retryablehttp.Request, *http.Response](il,
		interceptor.NewTracing[*retryablehttp.Request, *http.Response](t, retryableAdapter{rw: c.rw}, tracingOpts...))

	return c
}

// Token returns the re-entrancy token shared by the HTTP hosts.
func (c *HTTPClient) Token() *callctx.Token {
	return c.token
}

// UseHTTP appends interceptors to the Transport chain. It must be called
// before the first request.
func (c *HTTPClient) UseHTTP(i ...interceptor.Interceptor[*http.Request, *http.Response]) {
	c.httpChain.Use(i...)
}

// UseResty appends interceptors to the ExecuteResty chain. It must be called
// before the first request.
func (c *HTTPClient) UseResty(i ...interceptor.Interceptor[*RestyCall, *resty.Response]) {
	c.restyChain.Use(i...)
}

// UseRetryable appends interceptors to the DoRetryable chain. It must be
// called before the first request.
func (c *HTTPClient) UseRetryable(i ...interceptor.Interceptor[*retryablehttp.Request, *http.Response]) {
	c.retryableChain.Use(i...)
}

// Transport returns an instrumented RoundTripper over base. A nil base uses
// a pooled transport from go-cleanhttp.
func (c *HTTPClient) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = cleanhttp.DefaultPooledTransport()
	}
	return &Transport{base: base, client: c}
}

// Client returns an *http.Client whose requests are traced. Clients
// returned by Client, RestyClient and RetryableClient share one connection pool.
func (c *HTTPClient) Client() *http.Client {
	return &http.Client{
		Transport: c.shared,
		Timeout:   c.cfg.Timeout,
	}
}

func (c *HTTPClient) closeIdle() {
	c.shared.CloseIdleConnections()
}

// RestyClient returns a resty client configured from Config whose requests
// go through the instrumented Transport. Use ExecuteResty to trace a request
// once across all of its retries.
func (c *HTTPClient) RestyClient() *resty.Client {
	rc := resty.New().
		SetTransport(c.shared).
		SetTimeout(c.cfg.Timeout).
		SetRetryCount(c.cfg.RetryMax).
		SetRetryWaitTime(c.cfg.RetryWaitMin).
		SetRetryMaxWaitTime(c.cfg.RetryWaitMax)
	if c.cfg.UserAgent != "" {
		rc.SetHeader("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.BaseURL != "" {
		rc.SetBaseURL(c.cfg.BaseURL)
	}
	if c.logger != nil {
		rc.SetLogger(restyLogger{l: c.logger})
	}
	return rc
}

// RetryableClient returns a retryablehttp client configured from Config whose
// attempts go through the instrumented Transport. Use DoRetryable to trace a
// request once across all of its attempts.
func (c *HTTPClient) RetryableClient() *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = c.cfg.RetryMax
	rc.RetryWaitMin = c.cfg.RetryWaitMin
	rc.RetryWaitMax = c.cfg.RetryWaitMax
	rc.HTTPClient.Transport = c.shared
	rc.HTTPClient.Timeout = c.cfg.Timeout
	if c.logger != nil {
		rc.Logger = leveledLogger{l: c.logger}
	} else {
		rc.Logger = nil
	}
	return rc
}

// ExecuteResty sends req with the given method and URL as one traced call.
// req must have been created by a resty client, e.g. client.R().
func (c *HTTPClient) ExecuteResty(ctx context.Context, req *resty.Request, method, url string) (*resty.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	call := &restyCall{
		Method: method,
		Args:   &RestyCall{Request: req, Method: method, URL: url},
	}
	return interceptor.Invoke(ctx, c.restyChain, call, func(ctx context.Context, call *restyCall) (*resty.Response, error) {
		return call.Args.Request.SetContext(ctx).Execute(call.Args.Method, call.Args.URL)
	})
}

// DoRetryable sends req through client as one traced call, retries included.
func (c *HTTPClient) DoRetryable(ctx context.Context, client *retryablehttp.Client, req *retryablehttp.Request) (*http.Response, error) {
	if req == nil || req.Request == nil {
		return nil, ErrNilRequest
	}
	call := &retryableCall{Method: req.Method, Args: req}
	return interceptor.Invoke(ctx, c.retryableChain, call, func(ctx context.Context, call *retryableCall) (*http.Response, error) {
		return client.Do(call.Args.WithContext(ctx))
	})
}
