package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvJWTSecret = "JWT_SECRET"
	EnvJWTExpiry = "JWT_EXPIRY"

	EnvRedisAddr      = "REDIS_ADDR"
	EnvRedisPassword  = "REDIS_PASSWORD"
	EnvRedisDB        = "REDIS_DB"
	EnvFlightCacheTTL = "FLIGHT_CACHE_TTL"

	EnvKafkaBrokers      = "KAFKA_BROKERS"
	EnvKafkaBookingTopic = "KAFKA_BOOKING_TOPIC"
	EnvKafkaFlightTopic  = "KAFKA_FLIGHT_TOPIC"

	EnvSeatReleaseCap = "SEAT_RELEASE_CAP"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
