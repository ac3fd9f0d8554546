package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName is the name of the tracer spans are created with.
const instrumentationName = "github.com/aalemi-dev/calltrace"

// TracerClient creates the spans of intercepted calls and propagates their
// context through request headers. It is safe for concurrent use.
//
// It implements the Tracer interface.
type TracerClient struct {
	provider   *sdktrace.TracerProvider
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// Option configures a TracerClient.
type Option func(*options)

type options struct {
	processors []sdktrace.SpanProcessor
	sampler    sdktrace.Sampler
	noGlobal   bool
}

// WithSpanProcessor registers an additional span processor, for example a
// tracetest.SpanRecorder in tests.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(o *options) { o.processors = append(o.processors, sp) }
}

// WithSyncer exports every span to exporter synchronously as it ends. It is
// meant for tests and debugging:
//
//	exporter := tracetest.NewInMemoryExporter()
//	client, err := tracer.NewClient(cfg, tracer.WithSyncer(exporter))
func WithSyncer(exporter sdktrace.SpanExporter) Option {
	return WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter))
}

// WithSampler overrides the sampler derived from Config.SampleRatio.
func WithSampler(s sdktrace.Sampler) Option {
	return func(o *options) { o.sampler = s }
}

// WithoutGlobal keeps the client from installing itself as the global
// tracer provider and propagator.
func WithoutGlobal() Option {
	return func(o *options) { o.noGlobal = true }
}

// NewClient creates a TracerClient backed by an OpenTelemetry SDK tracer provider.
//
// When cfg.EnableExport is set, spans are batched to an OTLP HTTP exporter.
// The provider and a W3C trace-context + baggage propagator are installed as
// the otel globals unless WithoutGlobal is passed.
//
// Example:
//
//	tracerClient, err := tracer.NewClient(tracer.Config{
//	    ServiceName:  "checkout",
//	    AppEnv:       "production",
//	    EnableExport: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewClient(cfg Config, opts ...Option) (*TracerClient, error) {
	return newClientWithContext(context.Background(), cfg, opts...)
}

func newClientWithContext(ctx context.Context, cfg Config, opts ...Option) (*TracerClient, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var providerOptions []sdktrace.TracerProviderOption

	if cfg.EnableExport {
		var clientOptions []otlptracehttp.Option
		if cfg.Endpoint != "" {
			clientOptions = append(clientOptions, otlptracehttp.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			clientOptions = append(clientOptions, otlptracehttp.WithInsecure())
		}
		exporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(clientOptions...))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OTLP exporter: %w", err)
		}
		providerOptions = append(providerOptions, sdktrace.WithBatcher(exporter))
	}

	for _, sp := range o.processors {
		providerOptions = append(providerOptions, sdktrace.WithSpanProcessor(sp))
	}

	sampler := o.sampler
	if sampler == nil && cfg.SampleRatio > 0 && cfg.SampleRatio < 1 {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))
	}
	if sampler != nil {
		providerOptions = append(providerOptions, sdktrace.WithSampler(sampler))
	}

	providerOptions = append(providerOptions, sdktrace.WithResource(resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.AppEnv),
		attribute.String("environment", cfg.AppEnv),
	)))

	tp := sdktrace.NewTracerProvider(providerOptions...)
	propagator := propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})

	if !o.noGlobal {
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagator)
	}

	return &TracerClient{
		provider:   tp,
		tracer:     tp.Tracer(instrumentationName),
		propagator: propagator,
	}, nil
}

// Shutdown flushes and stops the tracer provider.
func (t *TracerClient) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// ForceFlush exports all ended spans that have not been exported yet.
func (t *TracerClient) ForceFlush(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.ForceFlush(ctx)
}
