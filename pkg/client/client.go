package client

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skybook/pkg/logger"
)

// Client holds the process-wide external connections. They are dialed once
// at startup and injected into components; no package-level singletons.
type Client struct {
	Mongo *mongo.Client
	Redis *redis.Client
}

func New() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, connTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	if err := mc.Ping(ctx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}

	log.Info("Connected to MongoDB")
	c.Mongo = mc
}

func (c *Client) SetRedis(log *logger.Logger, addr, password string, db int) {
	rc := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rc.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to ping Redis", "error", err, "addr", addr)
	}

	log.Info("Connected to Redis", "addr", addr)
	c.Redis = rc
}

// Close releases both connections; safe to call with partially initialized
// clients during startup failures.
func (c *Client) Close(ctx context.Context) {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Mongo != nil {
		_ = c.Mongo.Disconnect(ctx)
	}
}
