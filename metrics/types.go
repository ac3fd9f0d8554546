package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// counter is a counter vector, or one series of it when c is set.
type counter struct {
	vec *prometheus.CounterVec
	c   prometheus.Counter
}

func (c *counter) WithLabelValues(lvs ...string) Counter {
	return &counter{vec: c.vec, c: c.vec.WithLabelValues(lvs...)}
}

func (c *counter) series() prometheus.Counter {
	if c.c != nil {
		return c.c
	}
	return c.vec.WithLabelValues()
}

func (c *counter) Inc()            { c.series().Inc() }
func (c *counter) Add(val float64) { c.series().Add(val) }

// gauge is a gauge vector, or one series of it when g is set.
type gauge struct {
	vec *prometheus.GaugeVec
	g   prometheus.Gauge
}

func (g *gauge) WithLabelValues(lvs ...string) Gauge {
	return &gauge{vec: g.vec, g: g.vec.WithLabelValues(lvs...)}
}

func (g *gauge) series() prometheus.Gauge {
	if g.g != nil {
		return g.g
	}
	return g.vec.WithLabelValues()
}

func (g *gauge) Set(val float64)   { g.series().Set(val) }
func (g *gauge) Inc()              { g.series().Inc() }
func (g *gauge) Dec()              { g.series().Dec() }
func (g *gauge) Add(val float64)   { g.series().Add(val) }
func (g *gauge) Sub(val float64)   { g.series().Sub(val) }
func (g *gauge) SetToCurrentTime() { g.series().SetToCurrentTime() }

// observerVec is a histogram or summary vector.
type observerVec struct {
	vec prometheus.ObserverVec
}

func (o *observerVec) WithLabelValues(lvs ...string) Observer {
	return o.vec.WithLabelValues(lvs...)
}

func (o *observerVec) Observe(val float64) {
	o.vec.WithLabelValues().Observe(val)
}
