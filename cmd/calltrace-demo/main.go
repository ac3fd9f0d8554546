// Command calltrace-demo performs one traced HTTP call and, when Kafka is
// configured, publishes its outcome as a traced message. Spans are exported
// over OTLP when tracer.enable_export is set and operation metrics are
// served on the application metrics endpoint while the command runs.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/aalemi-dev/calltrace/config"
	"github.com/aalemi-dev/calltrace/httpclient"
	"github.com/aalemi-dev/calltrace/kafka"
	"github.com/aalemi-dev/calltrace/logger"
	"github.com/aalemi-dev/calltrace/metrics"
	"github.com/aalemi-dev/calltrace/tracer"
)

type demoOptions struct {
	configFile string
	url        string
	method     string
	timeout    time.Duration
}

func newDemoCommand() *cobra.Command {
	var opts demoOptions

	cmd := &cobra.Command{
		Use:           "calltrace-demo [OPTIONS]",
		Short:         "Perform a traced HTTP call and publish its outcome to Kafka",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "YAML configuration file")
	flags.StringVar(&opts.url, "url", "https://example.com", "URL to call")
	flags.StringVarP(&opts.method, "method", "X", "GET", "HTTP method")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Deadline of the call and the publish")

	return cmd
}

func runDemo(opts demoOptions) error {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}

	options := []fx.Option{
		fx.Supply(cfg, opts),
		fx.Provide(config.Split),
		fx.WithLogger(func(l *logger.LoggerClient) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Zap}
		}),
		logger.FXModule,
		fx.Provide(
			loggerAs(new(tracer.Logger)),
			loggerAs(new(metrics.Logger)),
			loggerAs(new(httpclient.Logger)),
			loggerAs(new(kafka.Logger)),
		),
		tracer.FXModule,
		metrics.FXModule,
		httpclient.FXModule,
		fx.Invoke(registerDemo),
	}
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Topic != "" {
		options = append(options, kafka.FXModule)
	}

	app := fx.New(options...)
	if err := app.Err(); err != nil {
		return err
	}
	app.Run()
	return nil
}

// loggerAs provides the shared *logger.LoggerClient as the package-local
// Logger interface pointed to by iface.
func loggerAs(iface interface{}) interface{} {
	return fx.Annotate(
		func(l *logger.LoggerClient) *logger.LoggerClient { return l },
		fx.As(iface),
	)
}

type demoParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Options    demoOptions
	HTTP       *httpclient.HTTPClient
	Logger     *logger.LoggerClient
	Kafka      kafka.Client `optional:"true"`
}

// outcome is the message published for the call.
type outcome struct {
	Method     string `json:"method"`
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

func registerDemo(p demoParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), p.Options.timeout)
				defer cancel()

				code := 0
				if err := runCall(ctx, p); err != nil {
					p.Logger.ErrorWithContext(ctx, "demo failed", err)
					code = 1
				}
				_ = p.Shutdowner.Shutdown(fx.ExitCode(code))
			}()
			return nil
		},
	})
}

func runCall(ctx context.Context, p demoParams) error {
	start := time.Now()
	resp, err := p.HTTP.ExecuteResty(ctx, p.HTTP.RestyClient().R(), p.Options.method, p.Options.url)

	out := outcome{
		Method:     p.Options.method,
		URL:        p.Options.url,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if resp != nil {
		out.StatusCode = resp.StatusCode()
	}
	if err != nil {
		out.Error = err.Error()
	}
	p.Logger.InfoWithContext(ctx, "call finished", err, map[string]interface{}{
		"url":         out.URL,
		"status_code": out.StatusCode,
		"duration_ms": out.DurationMS,
	})

	if p.Kafka == nil {
		return err
	}
	if pubErr := p.Kafka.Publish(ctx, out.URL, out); pubErr != nil {
		return fmt.Errorf("publish outcome: %w", p.Kafka.TranslateError(pubErr))
	}
	return err
}

func main() {
	if err := newDemoCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
