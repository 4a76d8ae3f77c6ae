package config

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"skybook/pkg/client"
	"skybook/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	JWTSecret string
	JWTExpiry time.Duration

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	FlightCacheTTL time.Duration

	KafkaBrokers      []string
	KafkaBookingTopic string
	KafkaFlightTopic  string

	// SeatReleaseCap clamps seat restoration at total_seats when enabled.
	// Off by default to match the historical uncapped behavior.
	SeatReleaseCap bool

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		JWTSecret: getEnvStr(EnvJWTSecret, ""),
		JWTExpiry: getEnvDuration(EnvJWTExpiry, DefaultJWTExpiry),

		RedisAddr:      getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword:  getEnvStr(EnvRedisPassword, ""),
		RedisDB:        getEnvNum(EnvRedisDB, DefaultRedisDB),
		FlightCacheTTL: getEnvDuration(EnvFlightCacheTTL, DefaultFlightCacheTTL),

		KafkaBrokers:      getEnvStrSlice(EnvKafkaBrokers, nil),
		KafkaBookingTopic: getEnvStr(EnvKafkaBookingTopic, DefaultKafkaBookingTopic),
		KafkaFlightTopic:  getEnvStr(EnvKafkaFlightTopic, DefaultKafkaFlightTopic),

		SeatReleaseCap: getEnvBool(EnvSeatReleaseCap, DefaultSeatReleaseCap),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:   getEnvStr(EnvLogLevel, DefaultLogLevel),
			Service: serviceName,
		}),
		Client: client.New(),
	}

	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
}

var mongoURIRegex = regexp.MustCompile(`^mongodb(\+srv)?://`)

func (cfg *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		problems = append(problems, "MongoURI cannot be empty")
	} else if !mongoURIRegex.MatchString(cfg.MongoURI) {
		problems = append(problems, "MongoURI must start with 'mongodb://' or 'mongodb+srv://'")
	}
	if cfg.MongoDatabaseName == "" {
		problems = append(problems, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if cfg.JWTSecret == "" {
		problems = append(problems, "JWTSecret cannot be empty")
	} else if len(cfg.JWTSecret) < 32 {
		problems = append(problems, "JWTSecret must be at least 32 bytes")
	}
	if cfg.JWTExpiry <= 0 {
		problems = append(problems, fmt.Sprintf("JWTExpiry must be positive, got: %s", cfg.JWTExpiry))
	}

	if cfg.FlightCacheTTL < 0 {
		problems = append(problems, fmt.Sprintf("FlightCacheTTL cannot be negative, got: %s", cfg.FlightCacheTTL))
	}

	if cfg.RateLimitRequests <= 0 {
		problems = append(problems, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitWindow <= 0 {
		problems = append(problems, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		problems = append(problems, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.MaxRequestSize <= 0 {
		problems = append(problems, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.ReadTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 || cfg.ShutdownTimeout <= 0 {
		problems = append(problems, "server timeouts must all be positive")
	}

	if len(problems) > 0 {
		msg := "configuration validation failed:\n"
		for i, p := range problems {
			msg += fmt.Sprintf("  %d. %s\n", i+1, p)
		}
		return fmt.Errorf("%s", msg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"port", cfg.Port,
		"jwt_expiry", cfg.JWTExpiry,
		"redis_addr", cfg.RedisAddr,
		"flight_cache_ttl", cfg.FlightCacheTTL,
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_booking_topic", cfg.KafkaBookingTopic,
		"kafka_flight_topic", cfg.KafkaFlightTopic,
		"seat_release_cap", cfg.SeatReleaseCap,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
	)
}

var mongoCredsRegex = regexp.MustCompile(`(mongodb(?:\+srv)?://)[^@/]+@`)

// redactMongoURI strips embedded credentials before the URI hits a log line.
func redactMongoURI(uri string) string {
	return mongoCredsRegex.ReplaceAllString(uri, "$1***@")
}
