package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Jer-romano/capstone2-traveler/internal/domain"
)

// UploadServiceImpl implements domain.UploadService. It owns the two-phase
// attach flow: write bytes to the blob store, then persist the reference
// record. The ordering is deliberate — a failure can leave an asset with no
// reference (orphan), but never a reference to a nonexistent asset.
type UploadServiceImpl struct {
	trips domain.TripRepository
	store domain.BlobStore
	cache domain.CacheRepository
}

// NewUploadService creates a new upload service
func NewUploadService(trips domain.TripRepository, store domain.BlobStore, cache domain.CacheRepository) *UploadServiceImpl {
	return &UploadServiceImpl{
		trips: trips,
		store: store,
		cache: cache,
	}
}

// AttachImage validates the upload, stores the bytes, then persists the
// image record. Validation failures are detected before the blob store is
// touched; first failure wins.
func (s *UploadServiceImpl) AttachImage(ctx context.Context, tripID string, upload domain.FileUpload, caption string, tags [3]string) (*domain.Image, error) {
	exists, err := s.trips.Exists(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to check trip: %w", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	if len(upload.Data) == 0 {
		return nil, domain.NewInvalidInput("missing file")
	}
	if caption == "" {
		return nil, domain.NewInvalidInput("missing caption")
	}
	if upload.FileName == "" || upload.ContentType == "" {
		return nil, domain.NewInvalidInput("malformed upload")
	}

	// Store the bytes first. Nothing is persisted if this fails.
	key := objectKey(tripID, upload.FileName)
	location, err := s.store.Put(ctx, key, upload.Data, upload.ContentType)
	if err != nil {
		return nil, &domain.UploadError{Err: err}
	}

	image, err := s.trips.AddImage(ctx, tripID, domain.ImageData{
		FileName: upload.FileName,
		Location: location,
		Caption:  caption,
		Tag1:     tags[0],
		Tag2:     tags[1],
		Tag3:     tags[2],
	})
	if err != nil {
		// The blob was already written; the asset at key is now orphaned.
		// Surfaced to the caller, not reconciled here.
		return nil, &domain.UploadError{Err: err, Orphaned: true}
	}

	if s.cache != nil {
		if err := s.cache.InvalidateTrip(ctx, tripID); err != nil {
			log.Printf("Warning: failed to invalidate trip cache: %v", err)
		}
	}

	return image, nil
}

// objectKey derives a per-trip, randomized storage key. Reusing the
// client-supplied filename as the key would let two uploads silently
// overwrite each other's asset, so only the extension survives.
func objectKey(tripID, fileName string) string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("trips/%s/%s%s", tripID, id, ext)
}
