package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Jer-romano/capstone2-traveler/internal/domain"
)

const cacheTripDetailTTL = 10 * time.Minute

// TripServiceImpl implements domain.TripService
type TripServiceImpl struct {
	trips domain.TripRepository
	users domain.UserRepository
	cache domain.CacheRepository
}

// NewTripService creates a new trip service
func NewTripService(trips domain.TripRepository, users domain.UserRepository, cache domain.CacheRepository) *TripServiceImpl {
	return &TripServiceImpl{
		trips: trips,
		users: users,
		cache: cache,
	}
}

// Create validates the owner and persists a new trip
func (s *TripServiceImpl) Create(ctx context.Context, title, userID string) (*domain.Trip, error) {
	if title == "" {
		return nil, domain.NewInvalidInput("title must not be empty")
	}
	if userID == "" {
		return nil, domain.NewInvalidInput("user_id must not be empty")
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return nil, domain.NewInvalidInput(fmt.Sprintf("user %q does not exist", userID))
	}

	return s.trips.Create(ctx, title, userID)
}

// List returns all trips, newest first
func (s *TripServiceImpl) List(ctx context.Context) ([]*domain.Trip, error) {
	return s.trips.FindAll(ctx)
}

// Get returns a trip with its images, serving from cache when possible
func (s *TripServiceImpl) Get(ctx context.Context, id string) (*domain.Trip, error) {
	if s.cache != nil {
		cached, err := s.cache.GetTrip(ctx, id)
		if err != nil {
			log.Printf("Warning: trip cache read failed: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	trip, err := s.trips.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetTrip(ctx, trip, cacheTripDetailTTL); err != nil {
			// Cache failures never fail the request
			log.Printf("Warning: trip cache write failed: %v", err)
		}
	}

	return trip, nil
}

// GetImages returns a trip's images in attach order
func (s *TripServiceImpl) GetImages(ctx context.Context, tripID string) ([]*domain.Image, error) {
	return s.trips.GetImages(ctx, tripID)
}

// Remove deletes a trip and its images, then drops the cached detail
func (s *TripServiceImpl) Remove(ctx context.Context, id string) error {
	if err := s.trips.Remove(ctx, id); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateTrip(ctx, id); err != nil {
			log.Printf("Warning: failed to invalidate trip cache: %v", err)
		}
	}

	return nil
}
