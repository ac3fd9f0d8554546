package metrics

// Default addresses of the metrics servers.
const (
	DefaultSystemMetricsAddress      = ":9090"
	DefaultApplicationMetricsAddress = ":9091"
)

// Config configures the two Prometheus endpoints: system metrics (Go
// runtime, process, build info) and application metrics (traced operations
// and anything created through MetricsCollector).
type Config struct {
	// SystemMetricsAddress is the listen address of the system endpoint.
	// nil uses DefaultSystemMetricsAddress; a pointer to "" disables the endpoint.
	SystemMetricsAddress *string `yaml:"system_metrics_address" envconfig:"SYSTEM_ADDRESS"`

	// ApplicationMetricsAddress is the listen address of the application endpoint.
	// nil uses DefaultApplicationMetricsAddress; a pointer to "" disables the
	// server, but the application registry is still created.
	ApplicationMetricsAddress *string `yaml:"application_metrics_address" envconfig:"APPLICATION_ADDRESS"`

	// ServiceName is added as the constant label service="<name>" to every metric.
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`

	// Namespace prefixes the names of the operation metrics. Default: "calltrace".
	Namespace string `yaml:"namespace" envconfig:"NAMESPACE" default:"calltrace"`
}

// Ptr returns a pointer to s, for disabling endpoints in configuration:
//
//	cfg := metrics.Config{SystemMetricsAddress: metrics.Ptr("")}
func Ptr(s string) *string {
	return &s
}

func addressOr(addr *string, def string) string {
	if addr == nil {
		return def
	}
	return *addr
}
