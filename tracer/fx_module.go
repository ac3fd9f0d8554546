package tracer

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides *TracerClient and the Tracer interface and shuts the
// tracer provider down when the application stops, flushing pending spans.
//
// Dependencies required by this module:
// - A tracer.Config instance must be available in the dependency injection container
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClient,
		fx.Annotate(
			func(t *TracerClient) Tracer { return t },
			fx.As(new(Tracer)),
		),
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// Logger is the subset of logger.Logger used by the lifecycle hook.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
}

// LifecycleParams groups the dependencies of RegisterTracerLifecycle.
type LifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *TracerClient
	Logger    Logger `optional:"true"`
}

// RegisterTracerLifecycle shuts the tracer provider down on application stop.
func RegisterTracerLifecycle(p LifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if p.Logger != nil {
				p.Logger.Info("shutting down tracer", nil)
			}
			return p.Client.Shutdown(ctx)
		},
	})
}
