package domain

import (
	"context"
	"time"
)

// CacheRepository defines read-through caching for trip detail lookups.
// Implementations should handle Redis operations.
type CacheRepository interface {
	// SetTrip caches a trip (with images) under its ID with TTL.
	SetTrip(ctx context.Context, trip *Trip, ttl time.Duration) error

	// GetTrip retrieves a cached trip. Returns nil if not found or expired.
	GetTrip(ctx context.Context, id string) (*Trip, error)

	// InvalidateTrip removes the cached entry for a trip.
	InvalidateTrip(ctx context.Context, id string) error
}
