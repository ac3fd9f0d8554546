package kafka

import (
	"context"

	"go.uber.org/fx"

	"github.com/aalemi-dev/calltrace/observability"
	"github.com/aalemi-dev/calltrace/tracer"
)

// FXModule provides *KafkaClient and the Client interface and shuts the
// client down when the application stops.
//
// Usage:
//
//	app := fx.New(
//	    tracer.FXModule,
//	    kafka.FXModule,
//	    fx.Supply(kafkaConfig),
//	)
var FXModule = fx.Module("kafka",
	fx.Provide(
		NewClientWithDI,
		fx.Annotate(
			func(k *KafkaClient) Client { return k },
			fx.As(new(Client)),
		),
	),
	fx.Invoke(RegisterKafkaLifecycle),
)

// KafkaParams groups the dependencies needed to create a Kafka client
type KafkaParams struct {
	fx.In

	Config       Config
	Tracer       tracer.Tracer
	Logger       Logger                 `optional:"true"`
	Serializer   Serializer             `optional:"true"`
	Deserializer Deserializer           `optional:"true"`
	Observer     observability.Observer `optional:"true"`
}

// NewClientWithDI creates a Kafka client from injected dependencies.
// Injected serializers replace the defaults of Config.DataType.
func NewClientWithDI(params KafkaParams) (*KafkaClient, error) {
	client, err := NewClient(params.Config, params.Tracer)
	if err != nil {
		return nil, err
	}

	if params.Logger != nil {
		client.WithLogger(params.Logger)
	}
	if params.Serializer != nil {
		client.SetSerializer(params.Serializer)
	}
	if params.Deserializer != nil {
		client.SetDeserializer(params.Deserializer)
	}
	if params.Observer != nil {
		client.WithObserver(params.Observer)
	}

	return client, nil
}

// KafkaLifecycleParams groups the dependencies needed for Kafka lifecycle management
type KafkaLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *KafkaClient
}

// RegisterKafkaLifecycle shuts the client down on application stop. Closing
// the writer flushes pending batches, so every outstanding publish future
// resolves and its span finishes before the tracer shuts down.
func RegisterKafkaLifecycle(params KafkaLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			params.Client.logInfo(ctx, "Kafka client started", nil)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			params.Client.logInfo(ctx, "Shutting down Kafka client", nil)
			params.Client.GracefulShutdown()
			return nil
		},
	})
}

// GracefulShutdown stops the consumer workers and closes the writer and reader.
// Close errors are logged, not returned.
func (k *KafkaClient) GracefulShutdown() {
	k.closeShutdownOnce.Do(func() {
		close(k.shutdownSignal)
	})

	k.mu.Lock()
	writer, reader := k.writer, k.reader
	k.mu.Unlock()

	k.logInfo(context.Background(), "Closing Kafka client", nil)

	if writer != nil {
		if err := writer.Close(); err != nil {
			k.logWarn(context.Background(), "Failed to close Kafka writer", err, nil)
		}
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			k.logWarn(context.Background(), "Failed to close Kafka reader", err, nil)
		}
	}
}
