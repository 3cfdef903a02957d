package repository

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Jer-romano/capstone2-traveler/internal/domain"
)

const (
	tripsCollection  = "trips"
	imagesCollection = "images"
)

// newID returns a new ULID string. ULIDs are lexicographically sortable by
// creation time, which keeps image ids aligned with attach order.
func newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// MongoTripRepository implements domain.TripRepository using MongoDB
type MongoTripRepository struct {
	trips  *mongo.Collection
	images *mongo.Collection
}

// NewMongoTripRepository creates a new MongoDB trip repository
func NewMongoTripRepository(db *mongo.Database) *MongoTripRepository {
	trips := db.Collection(tripsCollection)
	images := db.Collection(imagesCollection)

	// Create indexes for better query performance
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = trips.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	_, _ = images.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "trip_id", Value: 1},
			{Key: "attached_at", Value: 1},
		},
	})

	return &MongoTripRepository{
		trips:  trips,
		images: images,
	}
}

// Create persists a new trip with a generated ULID
func (r *MongoTripRepository) Create(ctx context.Context, title, userID string) (*domain.Trip, error) {
	if title == "" {
		return nil, domain.NewInvalidInput("title must not be empty")
	}

	trip := &domain.Trip{
		ID:        newID(),
		Title:     title,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := r.trips.InsertOne(ctx, trip); err != nil {
		return nil, fmt.Errorf("failed to insert trip: %w", err)
	}

	return trip, nil
}

// FindAll returns all trip summaries, newest first
func (r *MongoTripRepository) FindAll(ctx context.Context) ([]*domain.Trip, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.trips.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find trips: %w", err)
	}
	defer cursor.Close(ctx)

	trips := []*domain.Trip{}
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, fmt.Errorf("failed to decode trips: %w", err)
	}

	return trips, nil
}

// Get returns a trip together with its images in attach order. The trip
// document and the image list live in separate collections and are fetched
// concurrently.
func (r *MongoTripRepository) Get(ctx context.Context, id string) (*domain.Trip, error) {
	var trip domain.Trip
	var images []*domain.Image

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := r.trips.FindOne(gCtx, bson.M{"_id": id}).Decode(&trip)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to find trip: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		images, err = r.findImages(gCtx, id)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	trip.Images = images
	return &trip, nil
}

// GetImages returns a trip's images in attach order, checking that the trip
// itself exists first
func (r *MongoTripRepository) GetImages(ctx context.Context, tripID string) ([]*domain.Image, error) {
	exists, err := r.Exists(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	return r.findImages(ctx, tripID)
}

// Exists reports whether a trip with the given ID exists
func (r *MongoTripRepository) Exists(ctx context.Context, id string) (bool, error) {
	count, err := r.trips.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check trip existence: %w", err)
	}
	return count > 0, nil
}

// AddImage persists an image record for the trip. Trip existence is
// re-checked inside the transaction even though callers already validated
// it, so a concurrent Remove resolves to ErrNotFound instead of leaving an
// image row pointing at a deleted trip.
func (r *MongoTripRepository) AddImage(ctx context.Context, tripID string, data domain.ImageData) (*domain.Image, error) {
	image := &domain.Image{
		ID:         newID(),
		TripID:     tripID,
		FileName:   data.FileName,
		Location:   data.Location,
		Caption:    data.Caption,
		Tag1:       data.Tag1,
		Tag2:       data.Tag2,
		Tag3:       data.Tag3,
		AttachedAt: time.Now().UTC(),
	}

	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		count, err := r.trips.CountDocuments(sc, bson.M{"_id": tripID}, options.Count().SetLimit(1))
		if err != nil {
			return fmt.Errorf("failed to check trip existence: %w", err)
		}
		if count == 0 {
			return domain.ErrNotFound
		}

		if _, err := r.images.InsertOne(sc, image); err != nil {
			return fmt.Errorf("failed to insert image: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return image, nil
}

// Remove deletes the trip and cascade-deletes its images in one transaction
func (r *MongoTripRepository) Remove(ctx context.Context, id string) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.trips.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("failed to delete trip: %w", err)
		}
		if res.DeletedCount == 0 {
			return domain.ErrNotFound
		}

		if _, err := r.images.DeleteMany(sc, bson.M{"trip_id": id}); err != nil {
			return fmt.Errorf("%w: cascade delete of images: %v", domain.ErrConflict, err)
		}
		return nil
	})
}

func (r *MongoTripRepository) findImages(ctx context.Context, tripID string) ([]*domain.Image, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "attached_at", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := r.images.Find(ctx, bson.M{"trip_id": tripID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find images: %w", err)
	}
	defer cursor.Close(ctx)

	images := []*domain.Image{}
	if err := cursor.All(ctx, &images); err != nil {
		return nil, fmt.Errorf("failed to decode images: %w", err)
	}

	return images, nil
}

func (r *MongoTripRepository) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := r.trips.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
