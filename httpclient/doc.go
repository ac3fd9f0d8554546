// Package httpclient traces outgoing HTTP calls made with net/http, resty and
// retryablehttp.
//
// An HTTPClient holds one interceptor chain per host:
//
//   - Transport, an http.RoundTripper, traces every request sent through it.
//   - ExecuteResty traces a resty request across all of its retries.
//   - DoRetryable traces a retryablehttp request across all of its attempts.
//
// The hosts share a re-entrancy token. When ExecuteResty or DoRetryable sends
// through a client built by RestyClient or RetryableClient, the nested
// Transport runs under the same call attempt and does not open a second span:
//
//	hc := httpclient.NewClient(cfg, tracerClient, httpclient.WithLogger(log))
//	rc := hc.RestyClient()
//	resp, err := hc.ExecuteResty(ctx, rc.R(), http.MethodGet, "/orders")
//
// The span context is injected as W3C trace-context headers. The caller's
// *http.Request is cloned by Transport before its headers are rewritten.
package httpclient
