package logger

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerClient is a wrapper around Uber's Zap logger.
//
// LoggerClient implements the Logger interface.
type LoggerClient struct {
	// Zap is the underlying zap.Logger instance.
	// It is exposed for Zap-specific functionality; most logging should go
	// through the wrapper methods.
	Zap *zap.Logger

	// tracingEnabled makes the *WithContext methods attach trace_id and span_id.
	tracingEnabled bool
}

// NewLoggerClient initializes and returns a new instance of the logger based on configuration.
//
// The logger is configured with:
//   - JSON encoding for structured logging
//   - ISO8601 timestamp format under the "timestamp" key
//   - Capital letter level encoding (e.g., "INFO", "ERROR") without color codes
//   - Process ID and service name as default fields
//   - Caller information with a configurable skip depth
//   - Output directed to stderr
//
// If initialization fails, the function will call log.Fatal to terminate the application.
//
// Example:
//
//	log := logger.NewLoggerClient(logger.Config{
//	    Level:         logger.Info,
//	    ServiceName:   "billing-gateway",
//	    EnableTracing: true,
//	})
//	log.Info("interceptors registered", nil, map[string]interface{}{"count": 2})
func NewLoggerClient(cfg Config) *LoggerClient {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeCaller = zapcore.FullCallerEncoder
	encoderCfg.EncodeDuration = zapcore.MillisDurationEncoder

	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Development:       false,
		DisableCaller:     false,
		DisableStacktrace: false,
		Sampling:          nil,
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		InitialFields: map[string]interface{}{
			"pid":     os.Getpid(),
			"service": cfg.ServiceName,
		},
	}

	callerSkip := cfg.CallerSkip
	if callerSkip <= 0 {
		callerSkip = 1
	}

	logger, err := config.Build(zap.AddCaller(), zap.AddCallerSkip(callerSkip+1))
	if err != nil {
		log.Fatal(err)
	}

	return &LoggerClient{
		Zap:            logger,
		tracingEnabled: cfg.EnableTracing,
	}
}

// NewNopLoggerClient returns a LoggerClient that discards every entry.
func NewNopLoggerClient() *LoggerClient {
	return &LoggerClient{Zap: zap.NewNop()}
}

// Named returns a child logger whose entries carry a "logger" name,
// typically the component emitting them ("httpclient", "kafka").
func (l *LoggerClient) Named(name string) *LoggerClient {
	return &LoggerClient{
		Zap:            l.Zap.Named(name),
		tracingEnabled: l.tracingEnabled,
	}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case Debug:
		return zap.DebugLevel
	case Warning:
		return zap.WarnLevel
	case Error:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
