package main

import (
	"context"

	"github.com/julienschmidt/httprouter"

	"skybook/internal/api"
	authhandler "skybook/internal/auth/handler"
	authservice "skybook/internal/auth/service"
	"skybook/internal/auth/token"
	bookinghandler "skybook/internal/bookings/handler"
	bookingrepository "skybook/internal/bookings/repository"
	bookingservice "skybook/internal/bookings/service"
	"skybook/internal/events"
	"skybook/internal/flights/cache"
	flighthandler "skybook/internal/flights/handler"
	flightrepository "skybook/internal/flights/repository"
	flightservice "skybook/internal/flights/service"
	flightvalidator "skybook/internal/flights/validator"
	userhandler "skybook/internal/users/handler"
	userrepository "skybook/internal/users/repository"
	userservice "skybook/internal/users/service"
	"skybook/pkg/app"
	"skybook/pkg/config"
	"skybook/pkg/kafka"
)

const ServiceName = "api"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Skybook API")
	cfg.SetMongo()
	cfg.SetRedis()

	serverApp := app.NewApplication(cfg)
	router := initRoutes(cfg, serverApp)
	serverApp.SetApp(router)
	serverApp.OnShutdown(func() {
		cfg.Client.Close(context.Background())
	})
	serverApp.Run()
}

func initRoutes(cfg *config.Config, serverApp *app.Application) *httprouter.Router {
	publisher := initPublisher(cfg, serverApp)

	flightCache := cache.NewRedisFlightCache(cfg.Client.Redis, cfg.FlightCacheTTL, cfg.Log)
	flightRepo := flightrepository.NewMongoFlightRepository(cfg)
	flightService := flightservice.NewFlightService(
		flightRepo,
		flightCache,
		flightvalidator.NewFlightValidator(),
		publisher,
		cfg,
	)

	bookingRepo := bookingrepository.NewMongoBookingRepository(cfg)
	bookingService := bookingservice.NewBookingService(bookingRepo, flightService, publisher, cfg)

	userRepo := userrepository.NewMongoUserRepository(cfg)
	userService := userservice.NewUserService(userRepo, cfg)

	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTExpiry)
	authService := authservice.NewAuthService(userRepo, tokens, cfg)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return api.NewRouter(api.Handlers{
		Auth:     authhandler.NewAuthHandler(authService, cfg.Log),
		Flights:  flighthandler.NewFlightHandler(flightService, cfg.Log),
		Bookings: bookinghandler.NewBookingHandler(bookingService, cfg.Log),
		Users:    userhandler.NewUserHandler(userService, cfg.Log),
		Resolver: authService,
	}, cfg.Log)
}

// initPublisher builds the event publisher. Without brokers configured it
// degrades to a no-op and the API runs standalone.
func initPublisher(cfg *config.Config, serverApp *app.Application) *events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("Kafka brokers not configured, event publishing disabled")
		return events.NewPublisher(nil, nil, cfg.Log)
	}

	bookingProducer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaBookingTopic,
	})
	if err != nil {
		cfg.Log.Fatal("Failed to create booking event producer", "error", err)
	}

	flightProducer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaFlightTopic,
	})
	if err != nil {
		cfg.Log.Fatal("Failed to create flight event producer", "error", err)
	}

	serverApp.OnShutdown(func() {
		if err := bookingProducer.Close(); err != nil {
			cfg.Log.Warn("Failed to close booking event producer", "error", err)
		}
		if err := flightProducer.Close(); err != nil {
			cfg.Log.Warn("Failed to close flight event producer", "error", err)
		}
	})

	return events.NewPublisher(bookingProducer, flightProducer, cfg.Log)
}
