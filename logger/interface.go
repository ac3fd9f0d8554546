package logger

import (
	"context"
)

// Logger provides a high-level interface for structured logging.
//
// This interface is implemented by the concrete *LoggerClient type. Packages in this
// module that log declare a smaller local interface with just the methods they call,
// so a *LoggerClient can be passed anywhere without an import cycle.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})

	// The *WithContext variants include trace_id and span_id when tracing is enabled.

	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	FatalWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
