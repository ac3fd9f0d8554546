package logger

// Log level names accepted by Config.Level.
const (
	// Debug emits everything, including per-attempt guard and header diagnostics.
	Debug = "debug"

	// Info is the default level.
	Info = "info"

	// Warning emits warnings and errors only. Header capability failures are logged at this level.
	Warning = "warning"

	// Error emits errors only.
	Error = "error"
)

// Config defines the configuration structure for the logger.
type Config struct {
	// Level determines the minimum log level that will be output.
	// Valid values are "debug", "info", "warning" and "error"; anything else falls back to "info".
	//
	// This setting can be configured via:
	//   - YAML configuration with the "level" key
	//   - Environment variable LOGGER_LEVEL
	Level string `yaml:"level" envconfig:"LEVEL" default:"info"`

	// EnableTracing adds "trace_id" and "span_id" to every *WithContext entry
	// when the context carries a recording span.
	//
	// This setting can be configured via:
	//   - YAML configuration with the "enable_tracing" key
	//   - Environment variable LOGGER_ENABLE_TRACING
	EnableTracing bool `yaml:"enable_tracing" envconfig:"ENABLE_TRACING" default:"true"`

	// ServiceName populates the "service" field in log entries.
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`

	// CallerSkip controls the number of stack frames to skip when reporting the caller.
	//
	// Guidelines for setting CallerSkip:
	//   - 1 (default): the logger is called directly
	//   - 2: one wrapper layer sits between the caller and the logger
	//
	// If not set or set to 0, defaults to 1.
	CallerSkip int `yaml:"caller_skip" envconfig:"CALLER_SKIP"`
}
