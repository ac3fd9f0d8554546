// Package logger provides the structured logger used across calltrace.
//
// It wraps go.uber.org/zap with a small API where every call takes a message,
// an optional error, and optional field maps:
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:         logger.Info,
//		EnableTracing: true,
//		ServiceName:   "checkout",
//	})
//	log.InfoWithContext(ctx, "span finished", nil, map[string]interface{}{
//		"component": "httpclient",
//	})
//
// When EnableTracing is set, the *WithContext methods read the active
// OpenTelemetry span from ctx and add "trace_id" and "span_id", which lets the
// entries emitted while an intercepted call is in flight be joined with the
// span the interceptor produced.
//
// Packages in this module accept a narrow local Logger interface and treat a
// nil logger as "do not log"; *LoggerClient satisfies all of them.
//
// # FX
//
//	app := fx.New(
//		fx.Supply(logger.Config{Level: logger.Debug, ServiceName: "checkout"}),
//		logger.FXModule,
//	)
package logger
