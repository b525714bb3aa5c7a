package config

import "time"

const (
	CatalogSourceEmbedded = "embedded"
	CatalogSourceFile     = "file"
	CatalogSourceMongo    = "mongo"
)

const (
	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultTimeZone  = "Local"

	DefaultCatalogSource = CatalogSourceEmbedded

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "bookminton"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultLeadTime        = 1 * time.Hour
	DefaultMinDuration     = 1 * time.Hour
	DefaultRefreshInterval = 10 * time.Second

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
)
