package config

import (
	"go.uber.org/fx"

	"github.com/aalemi-dev/calltrace/httpclient"
	"github.com/aalemi-dev/calltrace/kafka"
	"github.com/aalemi-dev/calltrace/logger"
	"github.com/aalemi-dev/calltrace/metrics"
	"github.com/aalemi-dev/calltrace/tracer"
)

// Sections exposes each section of a Config as its own fx value, which is
// what the FX modules of the other packages depend on.
type Sections struct {
	fx.Out

	Logger     logger.Config
	Tracer     tracer.Config
	HTTPClient httpclient.Config
	Kafka      kafka.Config
	Metrics    metrics.Config
}

// Split provides the sections of cfg.
func Split(cfg Config) Sections {
	return Sections{
		Logger:     cfg.Logger,
		Tracer:     cfg.Tracer,
		HTTPClient: cfg.HTTPClient,
		Kafka:      cfg.Kafka,
		Metrics:    cfg.Metrics,
	}
}

// Module loads the configuration from path (see Load) and provides the
// Config together with its sections. A load error fails application start.
//
//	app := fx.New(
//	    config.Module(*configPath),
//	    logger.FXModule,
//	    tracer.FXModule,
//	)
func Module(path string) fx.Option {
	return fx.Module("config",
		fx.Provide(
			func() (Config, error) { return Load(path) },
			Split,
		),
	)
}
