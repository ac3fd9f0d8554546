package tracer

// Config defines the configuration for the OpenTelemetry tracer.
type Config struct {
	// ServiceName identifies the service in every span's resource.
	//
	// Example values: "checkout", "billing-gateway"
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`

	// AppEnv sets the "deployment.environment" and "environment" resource attributes.
	AppEnv string `yaml:"app_env" envconfig:"APP_ENV" default:"development"`

	// EnableExport configures an OTLP HTTP exporter. When false spans are only
	// handed to the processors passed with WithSpanProcessor; header propagation
	// works either way.
	EnableExport bool `yaml:"enable_export" envconfig:"ENABLE_EXPORT"`

	// Endpoint is the collector host:port. Empty uses the exporter default or
	// OTEL_EXPORTER_OTLP_ENDPOINT.
	Endpoint string `yaml:"endpoint" envconfig:"ENDPOINT"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure" envconfig:"INSECURE"`

	// SampleRatio between 0 and 1 samples that fraction of new traces.
	// 0 or values >= 1 sample everything. Remote parents are always honored.
	SampleRatio float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}
