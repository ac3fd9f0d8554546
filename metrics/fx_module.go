package metrics

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/fx"

	"github.com/aalemi-dev/calltrace/observability"
)

// Logger is the subset of logger.Logger used by this package.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// FXModule provides *Metrics, MetricsCollector, *OperationMetrics and an
// observability.Observer backed by the operation metrics, and runs both
// metrics servers for the lifetime of the application.
//
//	app := fx.New(
//	    metrics.FXModule,
//	    fx.Supply(metrics.Config{ServiceName: "checkout"}),
//	    fx.Invoke(func(m metrics.MetricsCollector) {
//	        m.CreateCounter("retries_total", "Retried calls", []string{"component"})
//	    }),
//	)
//
// Dependencies required by this module:
// - A metrics.Config instance
// - Optionally a Logger for startup and shutdown logs
var FXModule = fx.Module("metrics",
	fx.Provide(
		NewMetrics,
		fx.Annotate(
			func(m *Metrics) MetricsCollector { return m },
			fx.As(new(MetricsCollector)),
		),
		NewOperationMetrics,
		fx.Annotate(
			func(om *OperationMetrics) observability.Observer { return om },
			fx.As(new(observability.Observer)),
		),
	),
	fx.Invoke(RegisterMetricsLifecycle),
)

// LifecycleParams groups the dependencies of RegisterMetricsLifecycle.
type LifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Metrics   *Metrics
	Logger    Logger `optional:"true"`
}

// RegisterMetricsLifecycle starts the configured servers on application start
// and shuts them down on stop.
func RegisterMetricsLifecycle(p LifecycleParams) {
	servers := []struct {
		name string
		srv  *http.Server
	}{
		{"system", p.Metrics.SystemServer},
		{"application", p.Metrics.ApplicationServer},
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			for _, s := range servers {
				if s.srv == nil {
					continue
				}
				logInfo(p.Logger, "Starting "+s.name+" metrics server", map[string]interface{}{"address": s.srv.Addr})
				go func(name string, srv *http.Server) {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logError(p.Logger, "Error serving "+name+" metrics", err)
					}
				}(s.name, s.srv)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			for _, s := range servers {
				if s.srv == nil {
					continue
				}
				logInfo(p.Logger, "Shutting down "+s.name+" metrics server", nil)
				if err := s.srv.Shutdown(ctx); err != nil {
					logError(p.Logger, "Error shutting down "+s.name+" metrics server", err)
				}
			}
			return nil
		},
	})
}

func logInfo(log Logger, msg string, fields map[string]interface{}) {
	if log != nil {
		log.Info(msg, nil, fields)
	}
}

func logError(log Logger, msg string, err error) {
	if log != nil {
		log.Error(msg, err)
	}
}
