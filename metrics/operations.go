package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aalemi-dev/calltrace/observability"
)

// Outcome label values of the operations counter.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// OperationMetrics records every traced call reported to it as Prometheus
// metrics. It implements observability.Observer and is safe for concurrent use.
//
// With namespace "calltrace" it registers:
//
//	calltrace_operations_total{component,operation,outcome}
//	calltrace_operation_duration_seconds{component,operation}
//	calltrace_operation_payload_bytes{component,operation}
type OperationMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	size     *prometheus.HistogramVec
}

var _ observability.Observer = (*OperationMetrics)(nil)

// NewOperationMetrics registers the operation metrics in the application registry of m.
func NewOperationMetrics(m *Metrics) *OperationMetrics {
	om := &OperationMetrics{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "operations_total",
			Help:      "Traced calls by outcome.",
		}, []string{"component", "operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: m.namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of traced calls, up to their completion.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"component", "operation"}),
		size: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: m.namespace,
			Name:      "operation_payload_bytes",
			Help:      "Payload size of traced calls that reported one.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}, []string{"component", "operation"}),
	}
	m.registerer.MustRegister(om.total, om.duration, om.size)
	return om
}

// ObserveOperation records ctx. A call counts as an error when it returned
// one or when its response carried a 5xx status.
func (om *OperationMetrics) ObserveOperation(ctx observability.OperationContext) {
	outcome := OutcomeSuccess
	if ctx.Error != nil || ctx.StatusCode >= 500 {
		outcome = OutcomeError
	}
	om.total.WithLabelValues(ctx.Component, ctx.Operation, outcome).Inc()
	om.duration.WithLabelValues(ctx.Component, ctx.Operation).Observe(ctx.Duration.Seconds())
	if ctx.Size > 0 {
		om.size.WithLabelValues(ctx.Component, ctx.Operation).Observe(float64(ctx.Size))
	}
}
