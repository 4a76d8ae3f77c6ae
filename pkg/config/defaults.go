package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "skybook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultJWTExpiry = 30 * time.Minute

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisDB        = 0
	DefaultFlightCacheTTL = 30 * time.Second

	DefaultKafkaBookingTopic = "skybook.bookings"
	DefaultKafkaFlightTopic  = "skybook.flights"

	// Seat release is uncapped unless configured; cancelling a booking on a
	// flight whose capacity was later reduced can push available_seats past
	// total_seats (see DESIGN.md, open questions).
	DefaultSeatReleaseCap = false

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Pagination caps for the public flight endpoints.
	DefaultSearchLimit = 50
	MaxSearchLimit     = 100
	DefaultListLimit   = 100
	MaxListLimit       = 200
)
