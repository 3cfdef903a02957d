package domain

import (
	"context"
	"time"
)

// Trip represents a user-created journey holding zero or more images.
type Trip struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Title     string    `bson:"title" json:"title"`
	UserID    string    `bson:"user_id" json:"user_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`

	// Images is populated on detail lookups only, in attach order.
	Images []*Image `bson:"-" json:"images,omitempty"`
}

// Image is a reference record pointing at an externally stored photo asset.
// Location is the blob store URL and is immutable once set.
type Image struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	TripID     string    `bson:"trip_id" json:"trip_id"`
	FileName   string    `bson:"file_name" json:"file_name"`
	Location   string    `bson:"location" json:"location"`
	Caption    string    `bson:"caption" json:"caption"`
	Tag1       string    `bson:"tag1,omitempty" json:"tag1,omitempty"`
	Tag2       string    `bson:"tag2,omitempty" json:"tag2,omitempty"`
	Tag3       string    `bson:"tag3,omitempty" json:"tag3,omitempty"`
	AttachedAt time.Time `bson:"attached_at" json:"attached_at"`
}

// ImageData carries the metadata for a new Image record. The repository
// assigns the ID and attach timestamp.
type ImageData struct {
	FileName string
	Location string
	Caption  string
	Tag1     string
	Tag2     string
	Tag3     string
}

// TripRepository defines persistence for trips and their image records.
// Implementations must serialize conflicting writes: AddImage and Remove on
// the same trip both run under a transaction that re-validates trip
// existence, so a concurrent remove resolves to ErrNotFound rather than an
// orphaned image row.
type TripRepository interface {
	// Create persists a new trip and returns it with its assigned ID.
	Create(ctx context.Context, title, userID string) (*Trip, error)

	// FindAll returns trip summaries (no images), newest first.
	FindAll(ctx context.Context) ([]*Trip, error)

	// Get returns a trip with its images in attach order, or ErrNotFound.
	Get(ctx context.Context, id string) (*Trip, error)

	// GetImages returns a trip's images in attach order, or ErrNotFound
	// when the trip itself does not exist.
	GetImages(ctx context.Context, tripID string) ([]*Image, error)

	// Exists reports whether a trip with the given ID exists.
	Exists(ctx context.Context, id string) (bool, error)

	// AddImage persists an image record for the trip. Returns ErrNotFound
	// if the trip no longer exists at commit time.
	AddImage(ctx context.Context, tripID string, data ImageData) (*Image, error)

	// Remove deletes the trip and cascade-deletes its images in a single
	// transaction. Returns ErrNotFound if the trip does not exist,
	// ErrConflict if the store rejects the cascade.
	Remove(ctx context.Context, id string) error
}

// UserRepository is the slice of the user collaborator this service needs:
// trip creation validates that the owning user exists. Authentication and
// session management live elsewhere.
type UserRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// TripService defines the business operations behind the trip endpoints.
type TripService interface {
	Create(ctx context.Context, title, userID string) (*Trip, error)
	List(ctx context.Context) ([]*Trip, error)
	Get(ctx context.Context, id string) (*Trip, error)
	GetImages(ctx context.Context, tripID string) ([]*Image, error)
	Remove(ctx context.Context, id string) error
}

// UploadService coordinates the two-phase image attach: store bytes in the
// blob store, then persist the reference record.
type UploadService interface {
	AttachImage(ctx context.Context, tripID string, upload FileUpload, caption string, tags [3]string) (*Image, error)
}
