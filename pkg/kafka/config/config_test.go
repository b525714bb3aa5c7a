package kafka_config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DisabledByDefault(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled())
}

func TestLoad_Brokers(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv(EnvKafkaPublishTimeout, "2s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers)
	assert.Equal(t, DefaultBookingsTopic, cfg.BookingsTopic)
	assert.Equal(t, 2*time.Second, cfg.PublishTimeout)
}

func TestValidate_Failures(t *testing.T) {
	cfg := &Config{
		Brokers:              []string{"localhost:9092"},
		BookingsTopic:        "bookings",
		ProducerMaxAttempts:  0,
		ProducerBatchTimeout: time.Millisecond,
		ProducerRequireAcks:  2,
		ProducerCompression:  "brotli",
		PublishTimeout:       time.Second,
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ProducerMaxAttempts")
	assert.Contains(t, err.Error(), "ProducerRequireAcks")
	assert.Contains(t, err.Error(), "ProducerCompression")

	cfg.Brokers = nil
	assert.NoError(t, cfg.Validate(), "disabled config is not validated")
}
