package kafka

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"

	"github.com/aalemi-dev/calltrace/forwardlock"
)

// Client provides a high-level interface for interacting with Apache Kafka.
//
// This interface is implemented by the concrete *KafkaClient type.
type Client interface {
	// Publish sends a message and waits until the broker acknowledged it.
	// Optional headers are added to the message next to the trace headers.
	Publish(ctx context.Context, key string, data interface{}, headers ...map[string]interface{}) error

	// PublishAsync hands a message to the writer and returns a future that
	// resolves with the delivery once the writer reports it.
	PublishAsync(ctx context.Context, key string, data interface{}, headers ...map[string]interface{}) (*forwardlock.Future[Delivery], error)

	// Consume starts consuming messages with a single worker.
	Consume(ctx context.Context, wg *sync.WaitGroup) <-chan Message

	// ConsumeParallel starts consuming messages with numWorkers concurrent workers.
	ConsumeParallel(ctx context.Context, wg *sync.WaitGroup, numWorkers int) <-chan Message

	// Deserialize converts a Message to an object using the configured deserializer.
	Deserialize(msg Message, target interface{}) error

	SetSerializer(s Serializer)
	SetDeserializer(d Deserializer)
	SetDefaultSerializers()

	TranslateError(err error) error
	IsRetryableError(err error) bool
	IsAuthenticationError(err error) bool

	// GracefulShutdown closes all Kafka connections cleanly.
	GracefulShutdown()
}

// Message is a consumed Kafka message.
type Message interface {
	// CommitMsg commits the message offset.
	CommitMsg() error

	// Context carries the span of the delivery, parented on the trace
	// context found in the message headers. Handlers start their spans from it.
	Context() context.Context

	Body() []byte

	// BodyAs deserializes the body with the configured Deserializer, or JSON.
	BodyAs(target interface{}) error

	Key() string
	Header() map[string]interface{}
	Partition() int
	Offset() int64
}

// Logger is the subset of logger.Logger used by the Kafka client.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})

	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// messageWriter is the part of *kafka.Writer used by the client.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// messageReader is the part of *kafka.Reader used by the client.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
