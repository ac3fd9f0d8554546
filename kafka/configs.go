package kafka

import (
	"time"
)

// Config defines the configuration of the Kafka client.
type Config struct {
	// Brokers is a list of Kafka broker addresses
	Brokers []string `yaml:"brokers" envconfig:"BROKERS"`

	// Topic is the Kafka topic to publish to or consume from
	Topic string `yaml:"topic" envconfig:"TOPIC"`

	// GroupID is the consumer group ID. Only used when IsConsumer is true.
	GroupID string `yaml:"group_id" envconfig:"GROUP_ID"`

	// IsConsumer creates a reader instead of a writer.
	IsConsumer bool `yaml:"is_consumer" envconfig:"IS_CONSUMER"`

	// MinBytes and MaxBytes bound a single fetch request.
	// Default: 1 byte and 10MB
	MinBytes int `yaml:"min_bytes" envconfig:"MIN_BYTES"`
	MaxBytes int `yaml:"max_bytes" envconfig:"MAX_BYTES"`

	// MaxWait is the maximum amount of time to wait for MinBytes to become available
	// Default: 10s
	MaxWait time.Duration `yaml:"max_wait" envconfig:"MAX_WAIT"`

	// CommitInterval is how often offsets are committed when EnableAutoCommit is true.
	// Default: 1s
	CommitInterval time.Duration `yaml:"commit_interval" envconfig:"COMMIT_INTERVAL"`

	// EnableAutoCommit commits offsets every CommitInterval. When false,
	// messages must be committed with CommitMsg.
	EnableAutoCommit bool `yaml:"enable_auto_commit" envconfig:"ENABLE_AUTO_COMMIT"`

	// StartOffset is where to start consuming when there is no committed offset:
	// FirstOffset (-2) or LastOffset (-1).
	// Default: FirstOffset
	StartOffset int64 `yaml:"start_offset" envconfig:"START_OFFSET"`

	// Partition is the partition to consume from, -1 for group assignment.
	// Default: -1
	Partition int `yaml:"partition" envconfig:"PARTITION"`

	// RequiredAcks is RequireNone (0), RequireOne (1) or RequireAll (-1).
	// Default: RequireAll
	RequiredAcks int `yaml:"required_acks" envconfig:"REQUIRED_ACKS"`

	// WriteTimeout is the timeout for write operations
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`

	// Async makes WriteMessages return before delivery. Deliveries are then
	// reported through the writer's completion callback, which resolves the
	// futures returned by PublishAsync.
	Async bool `yaml:"async" envconfig:"ASYNC"`

	// BatchSize and BatchTimeout bound a batch of the async writer.
	// Default: 100 messages and 1s
	BatchSize    int           `yaml:"batch_size" envconfig:"BATCH_SIZE"`
	BatchTimeout time.Duration `yaml:"batch_timeout" envconfig:"BATCH_TIMEOUT"`

	// CompressionCodec is one of "gzip", "snappy", "lz4", "zstd" or empty.
	CompressionCodec string `yaml:"compression_codec" envconfig:"COMPRESSION_CODEC"`

	// MaxAttempts is the maximum number of attempts to deliver a message
	// Default: 10
	MaxAttempts int `yaml:"max_attempts" envconfig:"MAX_ATTEMPTS"`

	// AllowAutoTopicCreation lets the writer create missing topics.
	AllowAutoTopicCreation bool `yaml:"allow_auto_topic_creation" envconfig:"ALLOW_AUTO_TOPIC_CREATION"`

	TLS  TLSConfig  `yaml:"tls" envconfig:"TLS"`
	SASL SASLConfig `yaml:"sasl" envconfig:"SASL"`

	// DataType selects the default serializer: "json" (default), "string", "gob" or "bytes".
	DataType string `yaml:"data_type" envconfig:"DATA_TYPE"`
}

// TLSConfig contains TLS/SSL configuration parameters.
type TLSConfig struct {
	Enabled        bool   `yaml:"enabled" envconfig:"ENABLED"`
	CACertPath     string `yaml:"ca_cert_path" envconfig:"CA_CERT_PATH"`
	ClientCertPath string `yaml:"client_cert_path" envconfig:"CLIENT_CERT_PATH"`
	ClientKeyPath  string `yaml:"client_key_path" envconfig:"CLIENT_KEY_PATH"`

	// InsecureSkipVerify skips verification of the broker certificate. Testing only.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" envconfig:"INSECURE_SKIP_VERIFY"`
}

// SASLConfig contains SASL authentication configuration parameters.
type SASLConfig struct {
	Enabled bool `yaml:"enabled" envconfig:"ENABLED"`

	// Mechanism is "PLAIN", "SCRAM-SHA-256" or "SCRAM-SHA-512".
	Mechanism string `yaml:"mechanism" envconfig:"MECHANISM"`

	Username string `yaml:"username" envconfig:"USERNAME"`
	Password string `yaml:"password" envconfig:"PASSWORD"` //nolint:gosec
}

// Default values for configuration
const (
	DefaultMinBytes       = 1
	DefaultMaxBytes       = 10e6 // 10MB
	DefaultMaxWait        = 10 * time.Second
	DefaultCommitInterval = 1 * time.Second
	DefaultStartOffset    = -2 // FirstOffset
	DefaultPartition      = -1 // Automatic partition assignment
	DefaultRequiredAcks   = -1 // WaitForAll
	DefaultBatchSize      = 100
	DefaultBatchTimeout   = 1 * time.Second
	DefaultMaxAttempts    = 10
	DefaultWriteTimeout   = 10 * time.Second

	// Producer acknowledgment modes
	RequireNone = 0
	RequireOne  = 1
	RequireAll  = -1

	// Consumer offset modes
	FirstOffset = -2
	LastOffset  = -1
)

// withDefaults returns cfg with zero values replaced by the package defaults.
func (cfg Config) withDefaults() Config {
	if cfg.MinBytes == 0 {
		cfg.MinBytes = DefaultMinBytes
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = DefaultMaxWait
	}
	if cfg.CommitInterval == 0 {
		cfg.CommitInterval = DefaultCommitInterval
	}
	if cfg.StartOffset == 0 {
		cfg.StartOffset = DefaultStartOffset
	}
	if cfg.Partition == 0 {
		cfg.Partition = DefaultPartition
	}
	if cfg.RequiredAcks == 0 {
		cfg.RequiredAcks = DefaultRequiredAcks
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = DefaultBatchTimeout
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.DataType == "" {
		cfg.DataType = "json"
	}
	return cfg
}
