package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// extractTracingFields returns trace_id and span_id for the recording span in ctx.
// It returns nil when tracing is disabled, ctx is nil, or no valid span is active.
func (l *LoggerClient) extractTracingFields(ctx context.Context) []zap.Field {
	if !l.tracingEnabled || ctx == nil {
		return nil
	}

	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return nil
	}

	spanContext := span.SpanContext()
	if !spanContext.IsValid() {
		return nil
	}

	return []zap.Field{
		zap.String("trace_id", spanContext.TraceID().String()),
		zap.String("span_id", spanContext.SpanID().String()),
	}
}

// convertToZapFields converts error and additional field maps into Zap fields.
// If multiple maps contain the same key, the later maps win.
func (l *LoggerClient) convertToZapFields(err error, fields ...map[string]interface{}) []zap.Field {
	var zapFields []zap.Field
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}

	for _, fieldMap := range fields {
		for key, value := range fieldMap {
			zapFields = append(zapFields, zap.Any(key, value))
		}
	}
	return zapFields
}

// write is the single path to Zap, so every public method sits exactly one
// frame above it; NewLoggerClient accounts for that frame in the caller skip.
func (l *LoggerClient) write(ctx context.Context, level zapcore.Level, msg string, err error, fields ...map[string]interface{}) {
	zapFields := l.convertToZapFields(err, fields...)
	zapFields = append(zapFields, l.extractTracingFields(ctx)...)
	if ce := l.Zap.Check(level, msg); ce != nil {
		ce.Write(zapFields...)
	}
}

// Info logs an informational message, along with an optional error and structured fields.
// Use Info for lifecycle events such as exporters starting or consumers joining a group.
//
// Parameters:
//   - msg: The log message
//   - err: An error to include in the log entry, or nil if no error
//   - fields: Variable number of map[string]interface{} containing additional structured data
//
// Example:
//
//	logger.Info("span exporter started", nil, map[string]interface{}{
//	    "endpoint": "otel-collector:4318",
//	})
func (l *LoggerClient) Info(msg string, err error, fields ...map[string]interface{}) {
	l.write(context.Background(), zap.InfoLevel, msg, err, fields...)
}

// Debug logs a debug-level message, useful for following individual calls.
//
// Parameters:
//   - msg: The log message
//   - err: An error to include in the log entry, or nil if no error
//   - fields: Variable number of map[string]interface{} containing additional structured data
//
// Example:
//
//	logger.Debug("traceparent injected", nil, map[string]interface{}{
//	    "host": "http",
//	})
func (l *LoggerClient) Debug(msg string, err error, fields ...map[string]interface{}) {
	l.write(context.Background(), zap.DebugLevel, msg, err, fields...)
}

// Warn logs a warning message, indicating potential issues that aren't necessarily errors.
//
// Parameters:
//   - msg: The log message
//   - err: An error to include in the log entry, or nil if no error
//   - fields: Variable number of map[string]interface{} containing additional structured data
func (l *LoggerClient) Warn(msg string, err error, fields ...map[string]interface{}) {
	l.write(context.Background(), zap.WarnLevel, msg, err, fields...)
}

// Error logs an error message with details of the error.
//
// Parameters:
//   - msg: The log message
//   - err: An error to include in the log entry, or nil if no error
//   - fields: Variable number of map[string]interface{} containing additional structured data
//
// Example:
//
//	if err := client.Publish(ctx, msg); err != nil {
//	    logger.Error("publish failed", err, map[string]interface{}{
//	        "topic": msg.Topic,
//	    })
//	}
func (l *LoggerClient) Error(msg string, err error, fields ...map[string]interface{}) {
	l.write(context.Background(), zap.ErrorLevel, msg, err, fields...)
}

// Fatal logs a critical error message and terminates the application via os.Exit(1).
//
// Parameters:
//   - msg: The log message
//   - err: An error to include in the log entry, or nil if no error
//   - fields: Variable number of map[string]interface{} containing additional structured data
//
// Note: This function does not return as it terminates the application.
func (l *LoggerClient) Fatal(msg string, err error, fields ...map[string]interface{}) {
	l.write(context.Background(), zap.FatalLevel, msg, err, fields...)
}

// InfoWithContext logs an informational message with trace context.
// The trace and span IDs of the span in ctx are added to the entry when tracing is enabled.
//
// Parameters:
//   - ctx: The context carrying the active span, if any
//   - msg: The log message
//   - err: An error to include in the log entry, or nil if no error
//   - fields: Variable number of map[string]interface{} containing additional structured data
//
// Example:
//
//	logger.InfoWithContext(ctx, "message delivered", nil, map[string]interface{}{
//	    "topic":     "orders",
//	    "partition": 3,
//	})
func (l *LoggerClient) InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.write(ctx, zap.InfoLevel, msg, err, fields...)
}

// DebugWithContext logs a debug-level message with trace context.
// The trace and span IDs of the span in ctx are added to the entry when tracing is enabled.
//
// Parameters:
//   - ctx: The context carrying the active span, if any
//   - msg: The log message
//   - err: An error to include in the log entry, or nil if no error
//   - fields: Variable number of map[string]interface{} containing additional structured data
func (l *LoggerClient) DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.write(ctx, zap.DebugLevel, msg, err, fields...)
}

// WarnWithContext logs a warning message with trace context.
// The trace and span IDs of the span in ctx are added to the entry when tracing is enabled.
//
// Parameters:
//   - ctx: The context carrying the active span, if any
//   - msg: The log message
//   - err: An error to include in the log entry, or nil if no error
//   - fields: Variable number of map[string]interface{} containing additional structured data
//
// Example:
//
//	logger.WarnWithContext(ctx, "forward lock already held", nil, map[string]interface{}{
//	    "attempt": cctx.ID(),
//	})
func (l *LoggerClient) WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.write(ctx, zap.WarnLevel, msg, err, fields...)
}

// ErrorWithContext logs an error message with trace context.
// The trace and span IDs of the span in ctx are added to the entry when tracing is enabled.
//
// Parameters:
//   - ctx: The context carrying the active span, if any
//   - msg: The log message
//   - err: An error to include in the log entry, or nil if no error
//   - fields: Variable number of map[string]interface{} containing additional structured data
func (l *LoggerClient) ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.write(ctx, zap.ErrorLevel, msg, err, fields...)
}

// FatalWithContext logs a critical error message with trace context and terminates the application.
// The trace and span IDs of the span in ctx are added to the entry when tracing is enabled.
//
// Parameters:
//   - ctx: The context carrying the active span, if any
//   - msg: The log message
//   - err: An error to include in the log entry, or nil if no error
//   - fields: Variable number of map[string]interface{} containing additional structured data
//
// Note: This function does not return as it terminates the application.
func (l *LoggerClient) FatalWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.write(ctx, zap.FatalLevel, msg, err, fields...)
}
