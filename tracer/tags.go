package tracer

import (
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// Attribute keys set on the spans of intercepted calls.
const (
	TagComponent = "calltrace.component"
	TagAttemptID = "calltrace.attempt_id"
	TagSpanKind  = "calltrace.kind"
	TagError     = "error"

	TagHTTPMethod     = string(semconv.HTTPMethodKey)
	TagHTTPURL        = string(semconv.HTTPURLKey)
	TagHTTPRoute      = string(semconv.HTTPRouteKey)
	TagHTTPStatusCode = string(semconv.HTTPStatusCodeKey)

	TagMessagingSystem      = "messaging.system"
	TagMessagingDestination = "messaging.destination.name"
	TagKafkaPartition       = "messaging.kafka.destination.partition"
	TagKafkaOffset          = "messaging.kafka.message.offset"
	TagKafkaMessageKey      = "messaging.kafka.message.key"
)
