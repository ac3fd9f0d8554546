// Package header rewrites the outgoing headers of client requests.
//
// Client libraries store request headers in different shapes: http.Header on
// *http.Request, a slice of kafka.Header on kafka.Message, private fields on
// others. A Rewriter negotiates, once per request type, how to read a
// request's headers and how to install a replacement Bag into it. Rewrite
// copies the current headers into a fresh Bag and installs the Bag, so values
// set on the Bag afterwards are what the real call sends.
//
// Capabilities come from Register, or are discovered by reflection on an
// exported "Header" or "Headers" field of type http.Header or
// map[string][]string. Negotiation results, failures included, are cached by
// reflect.Type for the life of the Rewriter. A request type without a
// capability gets ErrNoHeaderSink; callers log it and carry on without header
// propagation.
package header
