// Package observability defines the hook through which intercepted calls are
// reported once they finish.
//
// Interceptors call ObserveOperation after the span of a call has been
// finished, with the same outcome the span recorded:
//
//	observer.ObserveOperation(observability.OperationContext{
//		Component: "kafka",
//		Operation: "produce",
//		Resource:  "orders",
//		Duration:  time.Since(start),
//		Error:     err,
//	})
//
// The metrics package provides a Prometheus-backed Observer. Multi combines
// several observers and ObserverFunc turns a function into one, which is the
// usual way to assert on reported operations in tests.
package observability
