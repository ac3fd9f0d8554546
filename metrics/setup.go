package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the system and application registries and their HTTP servers.
type Metrics struct {
	// SystemServer serves SystemRegistry on /metrics. It is nil when disabled.
	SystemServer *http.Server

	// ApplicationServer serves ApplicationRegistry on /metrics. It is nil when disabled.
	ApplicationServer *http.Server

	SystemRegistry      *prometheus.Registry
	ApplicationRegistry *prometheus.Registry

	namespace string

	// registerer adds the service label to everything registered in ApplicationRegistry.
	registerer prometheus.Registerer
}

// NewMetrics creates the registries and servers described by cfg. The
// servers are started by the FX lifecycle, or by the caller:
//
//	m := metrics.NewMetrics(cfg)
//	go m.ApplicationServer.ListenAndServe()
func NewMetrics(cfg Config) *Metrics {
	m := &Metrics{namespace: cfg.Namespace}
	if m.namespace == "" {
		m.namespace = "calltrace"
	}
	serviceLabel := prometheus.Labels{"service": cfg.ServiceName}

	if addr := addressOr(cfg.SystemMetricsAddress, DefaultSystemMetricsAddress); addr != "" {
		m.SystemRegistry = prometheus.NewRegistry()
		prometheus.WrapRegistererWith(serviceLabel, m.SystemRegistry).MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
		m.SystemServer = newServer(addr, m.SystemRegistry)
	}

	m.ApplicationRegistry = prometheus.NewRegistry()
	m.registerer = prometheus.WrapRegistererWith(serviceLabel, m.ApplicationRegistry)
	if addr := addressOr(cfg.ApplicationMetricsAddress, DefaultApplicationMetricsAddress); addr != "" {
		m.ApplicationServer = newServer(addr, m.ApplicationRegistry)
	}

	return m
}

func newServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return &http.Server{Addr: addr, Handler: mux}
}

// Namespace returns the prefix of the operation metrics.
func (m *Metrics) Namespace() string {
	return m.namespace
}
