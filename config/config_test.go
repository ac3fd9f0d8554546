package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/aalemi-dev/calltrace/kafka"
	"github.com/aalemi-dev/calltrace/metrics"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calltrace.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.True(t, cfg.Logger.EnableTracing)
	assert.Equal(t, "development", cfg.Tracer.AppEnv)
	assert.Equal(t, 30*time.Second, cfg.HTTPClient.Timeout)
	assert.Equal(t, 3, cfg.HTTPClient.RetryMax)
	assert.Equal(t, "calltrace", cfg.Metrics.Namespace)
	assert.Nil(t, cfg.Metrics.SystemMetricsAddress)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("CALLTRACE_SERVICE_NAME", "checkout")
	t.Setenv("CALLTRACE_KAFKA_BROKERS", "kafka-0:9092,kafka-1:9092")
	t.Setenv("CALLTRACE_HTTP_CLIENT_RETRY_MAX", "5")
	t.Setenv("CALLTRACE_METRICS_SYSTEM_ADDRESS", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-0:9092", "kafka-1:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5, cfg.HTTPClient.RetryMax)
	assert.Equal(t, "checkout", cfg.Logger.ServiceName)
	assert.Equal(t, "checkout", cfg.Tracer.ServiceName)
	assert.Equal(t, "checkout", cfg.Metrics.ServiceName)
	require.NotNil(t, cfg.Metrics.SystemMetricsAddress)
	assert.Empty(t, *cfg.Metrics.SystemMetricsAddress)
}

func TestLoad_FileOverridesEnvironment(t *testing.T) {
	t.Setenv("CALLTRACE_KAFKA_TOPIC", "from-env")
	t.Setenv("CALLTRACE_KAFKA_GROUP_ID", "billing")

	path := writeFile(t, `
service_name: checkout
tracer:
  service_name: checkout-tracer
  sample_ratio: 0.25
kafka:
  brokers: [localhost:9092]
  topic: orders
  async: true
http_client:
  timeout: 5s
metrics:
  application_metrics_address: ""
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "orders", cfg.Kafka.Topic)
	assert.Equal(t, "billing", cfg.Kafka.GroupID)
	assert.True(t, cfg.Kafka.Async)
	assert.Equal(t, 5*time.Second, cfg.HTTPClient.Timeout)
	assert.Equal(t, 3, cfg.HTTPClient.RetryMax)
	assert.Equal(t, 0.25, cfg.Tracer.SampleRatio)
	assert.Equal(t, "checkout-tracer", cfg.Tracer.ServiceName)
	assert.Equal(t, "checkout", cfg.Logger.ServiceName)
	require.NotNil(t, cfg.Metrics.ApplicationMetricsAddress)
	assert.Empty(t, *cfg.Metrics.ApplicationMetricsAddress)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrReadFile)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "kafka: [not, a, map]\n"))
	assert.ErrorIs(t, err, ErrParseFile)

	t.Setenv("CALLTRACE_HTTP_CLIENT_RETRY_MAX", "many")
	_, err = Load("")
	assert.ErrorIs(t, err, ErrEnvironment)
}

func TestModule(t *testing.T) {
	path := writeFile(t, "service_name: checkout\nkafka:\n  topic: orders\n")

	var (
		kafkaCfg   kafka.Config
		metricsCfg metrics.Config
	)
	app := fxtest.New(t,
		Module(path),
		fx.Populate(&kafkaCfg, &metricsCfg),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.Equal(t, "orders", kafkaCfg.Topic)
	assert.Equal(t, "checkout", metricsCfg.ServiceName)
}

func TestModule_LoadError(t *testing.T) {
	app := fx.New(
		Module(filepath.Join(t.TempDir(), "missing.yaml")),
		fx.Invoke(func(Config) {}),
		fx.NopLogger,
	)
	assert.ErrorIs(t, app.Err(), ErrReadFile)
}
