package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CreateCounter registers a counter vector in the application registry.
func (m *Metrics) CreateCounter(name, help string, labels []string) Counter {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
	m.registerer.MustRegister(vec)
	return &counter{vec: vec}
}

// CreateHistogram registers a histogram vector in the application registry.
//
//	hist := m.CreateHistogram("payload_bytes", "Payload sizes", []string{"topic"},
//	    prometheus.ExponentialBuckets(64, 4, 8))
//	hist.WithLabelValues("orders").Observe(512)
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) Histogram {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}, labels)
	m.registerer.MustRegister(vec)
	return &observerVec{vec: vec}
}

// CreateGauge registers a gauge vector in the application registry.
func (m *Metrics) CreateGauge(name, help string, labels []string) Gauge {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labels)
	m.registerer.MustRegister(vec)
	return &gauge{vec: vec}
}

// CreateSummary registers a summary vector in the application registry.
func (m *Metrics) CreateSummary(name, help string, labels []string, objectives map[float64]float64) Summary {
	vec := prometheus.NewSummaryVec(prometheus.SummaryOpts{Name: name, Help: help, Objectives: objectives}, labels)
	m.registerer.MustRegister(vec)
	return &observerVec{vec: vec}
}
