// Package view presents heterogeneous client-library requests and responses
// to interceptors through one read-mostly interface pair.
//
// An adapter for a library is a RequestExtractor and a ResponseExtractor
// parameterized by the library's own types. NewRequest and NewResponse turn
// them into Request and Response views:
//
//	ex := view.RequestExtractor[*http.Request]{
//		Method: func(r *http.Request) string { return r.Method },
//		Path:   func(r *http.Request) string { return r.URL.String() },
//	}
//	req, err := view.NewRequest(httpReq, ex, header.Default)
//	req.SetHeader("traceparent", value)
//
// Request views of outbound calls report KindClient. Route is empty unless
// the extractor supplies one.
package view
