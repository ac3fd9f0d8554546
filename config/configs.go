package config

import (
	"github.com/aalemi-dev/calltrace/httpclient"
	"github.com/aalemi-dev/calltrace/kafka"
	"github.com/aalemi-dev/calltrace/logger"
	"github.com/aalemi-dev/calltrace/metrics"
	"github.com/aalemi-dev/calltrace/tracer"
)

// EnvPrefix prefixes every environment variable read by Load, e.g.
// CALLTRACE_KAFKA_BROKERS or CALLTRACE_HTTP_CLIENT_TIMEOUT.
const EnvPrefix = "CALLTRACE"

// Config is the configuration of a whole application, one section per package.
type Config struct {
	// ServiceName is copied into every section that names the service and
	// leaves it empty.
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`

	Logger     logger.Config     `yaml:"logger" envconfig:"LOGGER"`
	Tracer     tracer.Config     `yaml:"tracer" envconfig:"TRACER"`
	HTTPClient httpclient.Config `yaml:"http_client" envconfig:"HTTP_CLIENT"`
	Kafka      kafka.Config      `yaml:"kafka" envconfig:"KAFKA"`
	Metrics    metrics.Config    `yaml:"metrics" envconfig:"METRICS"`
}

func (c *Config) propagateServiceName() {
	if c.ServiceName == "" {
		return
	}
	for _, name := range []*string{&c.Logger.ServiceName, &c.Tracer.ServiceName, &c.Metrics.ServiceName} {
		if *name == "" {
			*name = c.ServiceName
		}
	}
}
