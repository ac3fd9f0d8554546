package metrics

// MetricsCollector creates metrics in the application registry without
// exposing Prometheus types.
//
// This interface is implemented by the concrete *Metrics type.
type MetricsCollector interface {
	// CreateCounter registers a counter vector:
	//
	//	c := m.CreateCounter("retries_total", "Retried calls", []string{"component"})
	//	c.WithLabelValues("resty").Inc()
	CreateCounter(name, help string, labels []string) Counter

	// CreateHistogram registers a histogram vector. nil buckets use prometheus.DefBuckets.
	CreateHistogram(name, help string, labels []string, buckets []float64) Histogram

	// CreateGauge registers a gauge vector.
	CreateGauge(name, help string, labels []string) Gauge

	// CreateSummary registers a summary vector with the given quantile objectives.
	CreateSummary(name, help string, labels []string, objectives map[float64]float64) Summary
}

// Counter only increases.
type Counter interface {
	WithLabelValues(lvs ...string) Counter
	Inc()
	Add(val float64)
}

// Gauge goes up and down.
type Gauge interface {
	WithLabelValues(lvs ...string) Gauge
	Set(val float64)
	Inc()
	Dec()
	Add(val float64)
	Sub(val float64)
	SetToCurrentTime()
}

// Histogram buckets observations on the server side.
type Histogram interface {
	WithLabelValues(lvs ...string) Observer
	Observe(val float64)
}

// Summary computes streaming quantiles on the client side.
type Summary interface {
	WithLabelValues(lvs ...string) Observer
	Observe(val float64)
}

// Observer is a single histogram or summary series.
type Observer interface {
	Observe(val float64)
}
