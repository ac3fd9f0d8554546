package httpclient

import (
	"context"

	"go.uber.org/fx"

	"github.com/aalemi-dev/calltrace/observability"
	"github.com/aalemi-dev/calltrace/tracer"
)

// FXModule provides *HTTPClient and closes idle connections of its default
// client when the application stops.
//
// Dependencies required by this module:
// - An httpclient.Config instance
// - A tracer.Tracer
// - Optionally a Logger and an observability.Observer
var FXModule = fx.Module("httpclient",
	fx.Provide(
		NewClientWithDI,
	),
	fx.Invoke(RegisterHTTPClientLifecycle),
)

// HTTPClientParams groups the dependencies of NewClientWithDI.
type HTTPClientParams struct {
	fx.In

	Config   Config
	Tracer   tracer.Tracer
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI builds an HTTPClient from injected dependencies.
func NewClientWithDI(p HTTPClientParams) *HTTPClient {
	var opts []Option
	if p.Logger != nil {
		opts = append(opts, WithLogger(p.Logger))
	}
	if p.Observer != nil {
		opts = append(opts, WithObserver(p.Observer))
	}
	return NewClient(p.Config, p.Tracer, opts...)
}

// RegisterHTTPClientLifecycle closes idle connections on application stop.
func RegisterHTTPClientLifecycle(lc fx.Lifecycle, c *HTTPClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			c.closeIdle()
			return nil
		},
	})
}
