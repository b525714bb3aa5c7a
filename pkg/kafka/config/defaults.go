package kafka_config

import "time"

const (
	// No brokers means publishing is disabled.
	DefaultKafkaBrokers   = ""
	DefaultBookingsTopic  = "bookminton.bookings"
	DefaultPublishTimeout = 5 * time.Second

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1 // Require all replicas
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false

	DefaultEnableMiddleware = true
)
