package kafka

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/aalemi-dev/calltrace/callctx"
	"github.com/aalemi-dev/calltrace/header"
	"github.com/aalemi-dev/calltrace/interceptor"
	"github.com/aalemi-dev/calltrace/observability"
	"github.com/aalemi-dev/calltrace/tracer"
)

// KafkaClient publishes and consumes Kafka messages. Every produced message
// is an intercepted call traced by the client's interceptor chain, and every
// consumed message carries the span context propagated by its producer.
//
// KafkaClient implements the Client interface.
type KafkaClient struct {
	cfg Config

	tracer   tracer.Tracer
	observer observability.Observer
	logger   Logger
	rw       *header.Rewriter
	token    *callctx.Token
	chain    *interceptor.Chain[*ProduceArgs, Delivery]
	extra    []interceptor.Interceptor[*ProduceArgs, Delivery]

	writer messageWriter
	reader messageReader

	serializer   Serializer
	deserializer Deserializer

	// mu protects the writer, reader, chain, logger and serializers.
	mu sync.RWMutex

	shutdownSignal    chan struct{}
	closeShutdownOnce sync.Once
}

// NewClient creates a KafkaClient tracing through t. It creates a writer or,
// with cfg.IsConsumer, a reader.
//
// Example:
//
//	client, err := kafka.NewClient(config, tracerClient)
//	if err != nil {
//		return nil, err
//	}
//	defer client.GracefulShutdown()
func NewClient(cfg Config, t tracer.Tracer) (*KafkaClient, error) {
	cfg = cfg.withDefaults()

	k := &KafkaClient{
		cfg:            cfg,
		tracer:         t,
		token:          callctx.NewToken(Component),
		shutdownSignal: make(chan struct{}),
	}
	k.rw = header.NewRewriter(header.WithLogger(headerLogger{k}))
	RegisterSinks(k.rw)

	var tlsConfig *tls.Config
	var err error
	if cfg.TLS.Enabled {
		tlsConfig, err = createTLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	var mechanism sasl.Mechanism
	if cfg.SASL.Enabled {
		mechanism, err = createSASLMechanism(cfg.SASL)
		if err != nil {
			return nil, fmt.Errorf("failed to create SASL mechanism: %w", err)
		}
	}

	if cfg.IsConsumer {
		k.reader = createReader(cfg, tlsConfig, mechanism, k)
	} else {
		k.writer = createWriter(cfg, tlsConfig, mechanism, k)
	}

	k.SetDefaultSerializers()
	k.buildChain()
	return k, nil
}

// WithObserver reports every traced produce and every consumed message to observer.
func (k *KafkaClient) WithObserver(observer observability.Observer) *KafkaClient {
	k.mu.Lock()
	k.observer = observer
	k.mu.Unlock()
	k.buildChain()
	return k
}

// WithLogger attaches a logger for lifecycle, worker and propagation logs.
func (k *KafkaClient) WithLogger(logger Logger) *KafkaClient {
	k.mu.Lock()
	k.logger = logger
	k.mu.Unlock()
	k.buildChain()
	return k
}

// WithSerializer sets the serializer used by Publish.
func (k *KafkaClient) WithSerializer(serializer Serializer) *KafkaClient {
	k.SetSerializer(serializer)
	return k
}

// WithDeserializer sets the deserializer used by BodyAs and Deserialize.
func (k *KafkaClient) WithDeserializer(deserializer Deserializer) *KafkaClient {
	k.SetDeserializer(deserializer)
	return k
}

// Use appends interceptors to the produce chain. They run after the tracing
// interceptor's Before and before its After.
func (k *KafkaClient) Use(i ...interceptor.Interceptor[*ProduceArgs, Delivery]) *KafkaClient {
	k.mu.Lock()
	k.extra = append(k.extra, i...)
	k.mu.Unlock()
	k.buildChain()
	return k
}

// Token returns the re-entrancy token of the produce chain.
func (k *KafkaClient) Token() *callctx.Token {
	return k.token
}

func (k *KafkaClient) buildChain() {
	k.mu.Lock()
	defer k.mu.Unlock()

	var il interceptor.Logger
	if k.logger != nil {
		il = k.logger
	}
	opts := []interceptor.TracingOption{
		interceptor.WithToken(k.token),
		interceptor.WithLogger(il),
	}
	if k.observer != nil {
		opts = append(opts, interceptor.WithObserver(k.observer))
	}

	adapter := produceAdapter{rw: k.rw, topic: k.cfg.Topic, async: k.cfg.Async}
	chain := interceptor.NewChain[*ProduceArgs, Delivery](il,
		interceptor.NewTracing[*ProduceArgs, Delivery](k.tracer, adapter, opts...))
	chain.Use(k.extra...)
	k.chain = chain
}

func (k *KafkaClient) produceChain() *interceptor.Chain[*ProduceArgs, Delivery] {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.chain
}

// currentLogger returns the logger set by WithLogger. It must not be called with k.mu held.
func (k *KafkaClient) currentLogger() Logger {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.logger
}

func (k *KafkaClient) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if l := k.currentLogger(); l != nil {
		l.InfoWithContext(ctx, msg, nil, fields)
	}
}

func (k *KafkaClient) logWarn(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if l := k.currentLogger(); l != nil {
		l.WarnWithContext(ctx, msg, err, fields)
	}
}

// logError is only used for errors in background goroutines that can't be returned to the caller.
func (k *KafkaClient) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if l := k.currentLogger(); l != nil {
		l.ErrorWithContext(ctx, msg, err, fields)
	}
}

// headerLogger lets the header rewriter log through a logger attached later.
type headerLogger struct {
	k *KafkaClient
}

func (h headerLogger) Debug(msg string, err error, fields ...map[string]interface{}) {
	if l := h.k.currentLogger(); l != nil {
		l.Debug(msg, err, fields...)
	}
}

func (h headerLogger) Warn(msg string, err error, fields ...map[string]interface{}) {
	if l := h.k.currentLogger(); l != nil {
		l.Warn(msg, err, fields...)
	}
}

// SetSerializer sets the serializer for the Kafka client.
func (k *KafkaClient) SetSerializer(s Serializer) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.serializer = s
}

// SetDeserializer sets the deserializer for the Kafka client.
func (k *KafkaClient) SetDeserializer(d Deserializer) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.deserializer = d
}

func (k *KafkaClient) errorLogger() kafka.LoggerFunc {
	return func(msg string, args ...interface{}) {
		k.logError(context.Background(), "Kafka internal error", nil, map[string]interface{}{
			"error": fmt.Sprintf(msg, args...),
		})
	}
}

func compression(codec string) kafka.Compression {
	switch codec {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return 0
	}
}

// createWriter creates a writer whose completion callback resolves the
// delivery futures of produced messages.
func createWriter(cfg Config, tlsConfig *tls.Config, mechanism sasl.Mechanism, client *KafkaClient) *kafka.Writer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		MaxAttempts:            cfg.MaxAttempts,
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		Async:                  cfg.Async,
		Compression:            compression(cfg.CompressionCodec),
		AllowAutoTopicCreation: cfg.AllowAutoTopicCreation,
		ErrorLogger:            client.errorLogger(),
		Completion:             client.onCompletion,
	}
	if cfg.Async {
		w.BatchSize = cfg.BatchSize
		w.BatchTimeout = cfg.BatchTimeout
	}
	if tlsConfig != nil || mechanism != nil {
		w.Transport = &kafka.Transport{
			TLS:  tlsConfig,
			SASL: mechanism,
		}
	}
	return w
}

// createReader creates a Kafka reader with the given configuration
func createReader(cfg Config, tlsConfig *tls.Config, mechanism sasl.Mechanism, client *KafkaClient) *kafka.Reader {
	readerConfig := kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: cfg.StartOffset,
		ErrorLogger: client.errorLogger(),
		Dialer: &kafka.Dialer{
			TLS:           tlsConfig,
			SASLMechanism: mechanism,
		},
	}

	// CommitInterval 0 means synchronous commits through CommitMsg.
	if cfg.EnableAutoCommit {
		readerConfig.CommitInterval = cfg.CommitInterval
	}

	if cfg.Partition != -1 && cfg.GroupID == "" {
		readerConfig.Partition = cfg.Partition
	}

	return kafka.NewReader(readerConfig)
}

// createTLSConfig creates a TLS configuration from the provided config
func createTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caCertPool
	}

	if cfg.ClientCertPath != "" && cfg.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// createSASLMechanism creates a SASL mechanism from the provided config
func createSASLMechanism(cfg SASLConfig) (sasl.Mechanism, error) {
	switch cfg.Mechanism {
	case "PLAIN":
		return plain.Mechanism{
			Username: cfg.Username,
			Password: cfg.Password,
		}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSASLMechanism, cfg.Mechanism)
	}
}
