package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"skybook/pkg/logger"
	"skybook/pkg/model"
)

// Generation identifies the listing namespace a lookup observed. Listing
// writes must carry the generation returned by the matching read, so a
// result computed before an invalidation lands under the dead generation
// instead of resurrecting stale data under the new one.
type Generation int64

// GenerationUnknown marks a read that could not establish a generation.
// Writes carrying it are dropped.
const GenerationUnknown Generation = -1

// FlightCache is a read-through cache for flight lookups and listings.
// Misses and redis failures both surface as ok == false; callers fall back
// to the repository.
type FlightCache interface {
	GetFlight(ctx context.Context, id string) (*model.Flight, bool)
	SetFlight(ctx context.Context, flight *model.Flight)
	GetSearch(ctx context.Context, q model.FlightSearch) ([]*model.Flight, Generation, bool)
	SetSearch(ctx context.Context, q model.FlightSearch, gen Generation, flights []*model.Flight)
	GetList(ctx context.Context, limit int) ([]*model.Flight, Generation, bool)
	SetList(ctx context.Context, limit int, gen Generation, flights []*model.Flight)
	InvalidateFlight(ctx context.Context, id string)
	InvalidateListings(ctx context.Context)
}

type redisFlightCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedisFlightCache(client *redis.Client, ttl time.Duration, log *logger.Logger) FlightCache {
	return &redisFlightCache{client: client, ttl: ttl, log: log}
}

func (c *redisFlightCache) generation(ctx context.Context) (Generation, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return GenerationUnknown, err
	}
	return Generation(gen), nil
}

func (c *redisFlightCache) GetFlight(ctx context.Context, id string) (*model.Flight, bool) {
	data, err := c.client.Get(ctx, flightKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("flight cache read failed", "flight_id", id, "error", err)
		}
		return nil, false
	}

	var flight model.Flight
	if err := json.Unmarshal(data, &flight); err != nil {
		c.log.Warn("flight cache entry corrupt", "flight_id", id, "error", err)
		return nil, false
	}
	return &flight, true
}

func (c *redisFlightCache) SetFlight(ctx context.Context, flight *model.Flight) {
	data, err := json.Marshal(flight)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, flightKey(flight.ID), data, c.ttl).Err(); err != nil {
		c.log.Warn("flight cache write failed", "flight_id", flight.ID, "error", err)
	}
}

func (c *redisFlightCache) GetSearch(ctx context.Context, q model.FlightSearch) ([]*model.Flight, Generation, bool) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, GenerationUnknown, false
	}
	flights, ok := c.getListing(ctx, searchKey(gen, q))
	return flights, gen, ok
}

func (c *redisFlightCache) SetSearch(ctx context.Context, q model.FlightSearch, gen Generation, flights []*model.Flight) {
	if gen == GenerationUnknown {
		return
	}
	c.setListing(ctx, searchKey(gen, q), flights)
}

func (c *redisFlightCache) GetList(ctx context.Context, limit int) ([]*model.Flight, Generation, bool) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, GenerationUnknown, false
	}
	flights, ok := c.getListing(ctx, listKey(gen, limit))
	return flights, gen, ok
}

func (c *redisFlightCache) SetList(ctx context.Context, limit int, gen Generation, flights []*model.Flight) {
	if gen == GenerationUnknown {
		return
	}
	c.setListing(ctx, listKey(gen, limit), flights)
}

func (c *redisFlightCache) getListing(ctx context.Context, key string) ([]*model.Flight, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("flight listing cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var flights []*model.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, false
	}
	return flights, true
}

func (c *redisFlightCache) setListing(ctx context.Context, key string, flights []*model.Flight) {
	data, err := json.Marshal(flights)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("flight listing cache write failed", "key", key, "error", err)
	}
}

func (c *redisFlightCache) InvalidateFlight(ctx context.Context, id string) {
	if err := c.client.Del(ctx, flightKey(id)).Err(); err != nil {
		c.log.Warn("flight cache invalidation failed", "flight_id", id, "error", err)
	}
}

// InvalidateListings bumps the generation; old listing keys become
// unreachable and expire on their own TTL.
func (c *redisFlightCache) InvalidateListings(ctx context.Context) {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		c.log.Warn("flight listing invalidation failed", "error", err)
	}
}

// noopFlightCache is used when redis is not configured.
type noopFlightCache struct{}

func NewNoopFlightCache() FlightCache { return noopFlightCache{} }

func (noopFlightCache) GetFlight(context.Context, string) (*model.Flight, bool) { return nil, false }
func (noopFlightCache) SetFlight(context.Context, *model.Flight)                {}
func (noopFlightCache) GetSearch(context.Context, model.FlightSearch) ([]*model.Flight, Generation, bool) {
	return nil, GenerationUnknown, false
}
func (noopFlightCache) SetSearch(context.Context, model.FlightSearch, Generation, []*model.Flight) {}
func (noopFlightCache) GetList(context.Context, int) ([]*model.Flight, Generation, bool) {
	return nil, GenerationUnknown, false
}
func (noopFlightCache) SetList(context.Context, int, Generation, []*model.Flight) {}
func (noopFlightCache) InvalidateFlight(context.Context, string)                       {}
func (noopFlightCache) InvalidateListings(context.Context)                             {}
