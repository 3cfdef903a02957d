package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jer-romano/capstone2-traveler/internal/domain"
	"github.com/Jer-romano/capstone2-traveler/internal/repository"
)

type fakeUserRepo struct {
	existing map[string]bool
}

func (f *fakeUserRepo) Exists(ctx context.Context, id string) (bool, error) {
	return f.existing[id], nil
}

func newTripService(tripIDs ...string) (*TripServiceImpl, *fakeTripRepo) {
	repo := newFakeTripRepo(tripIDs...)
	users := &fakeUserRepo{existing: map[string]bool{"u1": true}}
	return NewTripService(repo, users, nil), repo
}

func TestCreateTrip(t *testing.T) {
	svc, _ := newTripService()

	trip, err := svc.Create(context.Background(), "Paris", "u1")

	require.NoError(t, err)
	assert.NotEmpty(t, trip.ID)
	assert.Equal(t, "Paris", trip.Title)
	assert.Equal(t, "u1", trip.UserID)

	// Create followed by Get returns the same trip with zero images
	got, err := svc.Get(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.ID, got.ID)
	assert.Equal(t, "Paris", got.Title)
	assert.Empty(t, got.Images)
}

func TestCreateTripValidation(t *testing.T) {
	svc, _ := newTripService()

	_, err := svc.Create(context.Background(), "", "u1")
	assert.True(t, domain.IsInvalidInput(err), "empty title must be rejected")

	_, err = svc.Create(context.Background(), "Paris", "")
	assert.True(t, domain.IsInvalidInput(err), "empty user_id must be rejected")

	_, err = svc.Create(context.Background(), "Paris", "ghost")
	assert.True(t, domain.IsInvalidInput(err), "unknown user must be rejected")
}

func TestRemoveTrip(t *testing.T) {
	svc, repo := newTripService("t1")

	require.NoError(t, svc.Remove(context.Background(), "t1"))

	_, err := svc.Get(context.Background(), "t1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetImages(context.Background(), "t1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.Remove(context.Background(), "t1"), domain.ErrNotFound)
}

func TestGetTripUsesCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := repository.NewRedisCacheRepository(redisClient)

	repo := newFakeTripRepo("t1")
	users := &fakeUserRepo{existing: map[string]bool{"u1": true}}
	svc := NewTripService(repo, users, cache)

	_, err = svc.Get(context.Background(), "t1")
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), "t1")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.getCalls, "second lookup should be served from cache")

	// Remove drops the cached entry
	require.NoError(t, svc.Remove(context.Background(), "t1"))
	_, err = svc.Get(context.Background(), "t1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
