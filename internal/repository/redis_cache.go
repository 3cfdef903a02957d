package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Jer-romano/capstone2-traveler/internal/domain"
)

const tripDetailKeyPrefix = "trip:detail:"

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = fmt.Errorf("cache miss")

// RedisCacheRepository implements domain.CacheRepository using Redis
type RedisCacheRepository struct {
	client *redis.Client
}

// NewRedisCacheRepository creates a new Redis cache repository
func NewRedisCacheRepository(client *redis.Client) *RedisCacheRepository {
	return &RedisCacheRepository{
		client: client,
	}
}

// SetTrip caches a trip detail (including images) with TTL
func (r *RedisCacheRepository) SetTrip(ctx context.Context, trip *domain.Trip, ttl time.Duration) error {
	return r.set(ctx, tripDetailKeyPrefix+trip.ID, trip, ttl)
}

// GetTrip retrieves a cached trip detail. Returns nil on cache miss.
func (r *RedisCacheRepository) GetTrip(ctx context.Context, id string) (*domain.Trip, error) {
	var trip domain.Trip
	err := r.get(ctx, tripDetailKeyPrefix+id, &trip)
	if err != nil {
		if err == ErrCacheMiss {
			return nil, nil
		}
		return nil, err
	}
	return &trip, nil
}

// InvalidateTrip removes the cached detail for a trip
func (r *RedisCacheRepository) InvalidateTrip(ctx context.Context, id string) error {
	return r.client.Del(ctx, tripDetailKeyPrefix+id).Err()
}

// get retrieves a value from cache by key with OTel tracing
func (r *RedisCacheRepository) get(ctx context.Context, key string, dest interface{}) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Get",
		trace.WithAttributes(attribute.String("cache.key", key)),
	)
	defer span.End()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			span.SetAttributes(attribute.String("cache.result", "miss"))
			return ErrCacheMiss
		}
		span.RecordError(err)
		return fmt.Errorf("redis get error: %w", err)
	}

	span.SetAttributes(attribute.String("cache.result", "hit"))
	if err := json.Unmarshal(data, dest); err != nil {
		span.RecordError(err)
		return fmt.Errorf("unmarshal error: %w", err)
	}

	return nil
}

// set stores a value in cache with TTL and OTel tracing
func (r *RedisCacheRepository) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Set",
		trace.WithAttributes(
			attribute.String("cache.key", key),
			attribute.Int64("cache.ttl_seconds", int64(ttl.Seconds())),
		),
	)
	defer span.End()

	data, err := json.Marshal(value)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("marshal error: %w", err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}
