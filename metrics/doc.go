// Package metrics exposes Prometheus metrics on two endpoints and records
// traced calls as operation metrics.
//
// # Endpoints
//
// The system endpoint (default :9090) serves Go runtime, process and build
// info collectors. The application endpoint (default :9091) serves the
// operation metrics plus anything created through MetricsCollector. Every
// metric carries a service label taken from Config.ServiceName. Either
// endpoint is disabled with an empty address:
//
//	m := metrics.NewMetrics(metrics.Config{
//		SystemMetricsAddress: metrics.Ptr(""),
//		ServiceName:          "checkout",
//	})
//
// # Operation metrics
//
// OperationMetrics is an observability.Observer. Passing it to the
// httpclient or kafka packages counts every traced call by component,
// operation and outcome, and records its duration and payload size:
//
//	om := metrics.NewOperationMetrics(m)
//	client := httpclient.NewClient(cfg, t, httpclient.WithObserver(om))
//
// Asynchronous calls are observed when their completion arrives, so their
// duration covers the whole delivery.
//
// # Fx
//
// FXModule provides all of the above and starts and stops the servers with
// the application lifecycle.
package metrics
