package observability

import "time"

// Observer receives one OperationContext per finished intercepted call.
//
// Observers are optional: every package in this module works without one.
// ObserveOperation may be called from the goroutine that completed an
// asynchronous call, so implementations must be safe for concurrent use.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// OperationContext describes a finished intercepted call.
type OperationContext struct {
	// Component identifies the interceptor that traced the call.
	// Examples: "httpclient", "resty", "retryablehttp", "kafka"
	Component string

	// Operation describes what was performed.
	// Examples: "GET", "POST", "produce", "consume"
	Operation string

	// Resource identifies the primary target of the call.
	// Examples: a URL for HTTP calls, a topic name for Kafka.
	Resource string

	// SubResource provides additional resource context (optional).
	// Examples: the Kafka partition number ("3").
	SubResource string

	// AttemptID is the identifier of the call attempt, shared by every call
	// site that fired for it.
	AttemptID string

	// StatusCode is the protocol status of the response, 0 when there was none.
	StatusCode int

	// Duration is how long the call took from entry to completion. For
	// asynchronous calls it ends when the completion arrived.
	Duration time.Duration

	// Error is the error returned by the call, if any.
	Error error

	// Size is the size of the payload involved, in bytes (optional).
	Size int64

	// Metadata holds operation-specific information (optional).
	// Examples: {"async": true, "offset": int64(12345)}
	Metadata map[string]interface{}
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

// ObserveOperation calls f(ctx).
func (f ObserverFunc) ObserveOperation(ctx OperationContext) {
	f(ctx)
}
