package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jer-romano/capstone2-traveler/internal/domain"
)

// fakeBlobStore counts Put calls so tests can assert the store is never
// touched on validation failure.
type fakeBlobStore struct {
	putCalls int
	lastKey  string
	failWith error
}

func (f *fakeBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.putCalls++
	f.lastKey = key
	if f.failWith != nil {
		return "", f.failWith
	}
	return "http://blobs.test/traveler/" + key, nil
}

type fakeTripRepo struct {
	existing    map[string]bool
	titles      map[string]string
	addImageErr error
	addedImages []domain.ImageData
	addImagePer map[string][]*domain.Image
	getCalls    int
}

func newFakeTripRepo(tripIDs ...string) *fakeTripRepo {
	existing := make(map[string]bool)
	for _, id := range tripIDs {
		existing[id] = true
	}
	return &fakeTripRepo{
		existing:    existing,
		titles:      make(map[string]string),
		addImagePer: make(map[string][]*domain.Image),
	}
}

func (f *fakeTripRepo) Create(ctx context.Context, title, userID string) (*domain.Trip, error) {
	id := fmt.Sprintf("trip-%d", len(f.existing)+1)
	f.existing[id] = true
	f.titles[id] = title
	return &domain.Trip{ID: id, Title: title, UserID: userID}, nil
}

func (f *fakeTripRepo) FindAll(ctx context.Context) ([]*domain.Trip, error) {
	trips := []*domain.Trip{}
	for id := range f.existing {
		trips = append(trips, &domain.Trip{ID: id, Title: f.titles[id]})
	}
	return trips, nil
}

func (f *fakeTripRepo) Get(ctx context.Context, id string) (*domain.Trip, error) {
	f.getCalls++
	if !f.existing[id] {
		return nil, domain.ErrNotFound
	}
	return &domain.Trip{ID: id, Title: f.titles[id], Images: f.addImagePer[id]}, nil
}

func (f *fakeTripRepo) GetImages(ctx context.Context, tripID string) ([]*domain.Image, error) {
	if !f.existing[tripID] {
		return nil, domain.ErrNotFound
	}
	return f.addImagePer[tripID], nil
}

func (f *fakeTripRepo) Exists(ctx context.Context, id string) (bool, error) {
	return f.existing[id], nil
}

func (f *fakeTripRepo) AddImage(ctx context.Context, tripID string, data domain.ImageData) (*domain.Image, error) {
	if f.addImageErr != nil {
		return nil, f.addImageErr
	}
	if !f.existing[tripID] {
		return nil, domain.ErrNotFound
	}
	f.addedImages = append(f.addedImages, data)
	image := &domain.Image{
		ID:       fmt.Sprintf("img-%d", len(f.addedImages)),
		TripID:   tripID,
		FileName: data.FileName,
		Location: data.Location,
		Caption:  data.Caption,
		Tag1:     data.Tag1,
		Tag2:     data.Tag2,
		Tag3:     data.Tag3,
	}
	f.addImagePer[tripID] = append(f.addImagePer[tripID], image)
	return image, nil
}

func (f *fakeTripRepo) Remove(ctx context.Context, id string) error {
	if !f.existing[id] {
		return domain.ErrNotFound
	}
	delete(f.existing, id)
	return nil
}

func validUpload() domain.FileUpload {
	return domain.FileUpload{
		FileName:    "eiffel.jpg",
		ContentType: "image/jpeg",
		Data:        []byte("jpeg bytes"),
	}
}

func TestAttachImageValidation(t *testing.T) {
	tests := []struct {
		name    string
		tripID  string
		upload  domain.FileUpload
		caption string
		wantMsg string
	}{
		{
			name:    "missing file",
			tripID:  "t1",
			upload:  domain.FileUpload{FileName: "eiffel.jpg", ContentType: "image/jpeg"},
			caption: "Eiffel at dusk",
			wantMsg: "missing file",
		},
		{
			name:    "missing caption",
			tripID:  "t1",
			upload:  validUpload(),
			caption: "",
			wantMsg: "missing caption",
		},
		{
			name:    "no filename",
			tripID:  "t1",
			upload:  domain.FileUpload{ContentType: "image/jpeg", Data: []byte("x")},
			caption: "Eiffel at dusk",
			wantMsg: "malformed upload",
		},
		{
			name:    "no content type",
			tripID:  "t1",
			upload:  domain.FileUpload{FileName: "eiffel.jpg", Data: []byte("x")},
			caption: "Eiffel at dusk",
			wantMsg: "malformed upload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeBlobStore{}
			repo := newFakeTripRepo("t1")
			svc := NewUploadService(repo, store, nil)

			_, err := svc.AttachImage(context.Background(), tt.tripID, tt.upload, tt.caption, [3]string{})

			require.Error(t, err)
			var invalid *domain.InvalidInputError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.wantMsg, invalid.Msg)
			assert.Equal(t, 0, store.putCalls, "blob store must not be called on validation failure")
			assert.Empty(t, repo.addedImages)
		})
	}
}

func TestAttachImageUnknownTrip(t *testing.T) {
	store := &fakeBlobStore{}
	repo := newFakeTripRepo("t1")
	svc := NewUploadService(repo, store, nil)

	// Trip existence is checked before the payload, so even a fully
	// invalid upload reports NotFound first.
	_, err := svc.AttachImage(context.Background(), "nonexistent-trip", domain.FileUpload{}, "", [3]string{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, store.putCalls)
}

func TestAttachImageStoreFailure(t *testing.T) {
	store := &fakeBlobStore{failWith: fmt.Errorf("%w: connection refused", domain.ErrStoreUnavailable)}
	repo := newFakeTripRepo("t1")
	svc := NewUploadService(repo, store, nil)

	_, err := svc.AttachImage(context.Background(), "t1", validUpload(), "Eiffel at dusk", [3]string{})

	var upload *domain.UploadError
	require.ErrorAs(t, err, &upload)
	assert.False(t, upload.Orphaned)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	// Store-then-record ordering: no image row after a failed put.
	images, getErr := repo.GetImages(context.Background(), "t1")
	require.NoError(t, getErr)
	assert.Empty(t, images)
}

func TestAttachImagePersistenceFailure(t *testing.T) {
	store := &fakeBlobStore{}
	repo := newFakeTripRepo("t1")
	repo.addImageErr = errors.New("write failed")
	svc := NewUploadService(repo, store, nil)

	_, err := svc.AttachImage(context.Background(), "t1", validUpload(), "Eiffel at dusk", [3]string{})

	var upload *domain.UploadError
	require.ErrorAs(t, err, &upload)
	assert.True(t, upload.Orphaned, "blob was written, so the asset is orphaned")
	assert.Equal(t, 1, store.putCalls)

	images, getErr := repo.GetImages(context.Background(), "t1")
	require.NoError(t, getErr)
	assert.Empty(t, images, "image list must be unchanged after persistence failure")
}

func TestAttachImageSuccess(t *testing.T) {
	store := &fakeBlobStore{}
	repo := newFakeTripRepo("t1")
	svc := NewUploadService(repo, store, nil)

	image, err := svc.AttachImage(context.Background(), "t1", validUpload(), "Eiffel at dusk", [3]string{"paris", "sunset", ""})

	require.NoError(t, err)
	assert.Equal(t, "t1", image.TripID)
	assert.Equal(t, "eiffel.jpg", image.FileName)
	assert.Equal(t, "Eiffel at dusk", image.Caption)
	assert.Equal(t, "paris", image.Tag1)
	assert.Equal(t, "sunset", image.Tag2)
	assert.Empty(t, image.Tag3)
	assert.Equal(t, "http://blobs.test/traveler/"+store.lastKey, image.Location)
	assert.Equal(t, 1, store.putCalls)
}

func TestAttachImageOrderPreserved(t *testing.T) {
	store := &fakeBlobStore{}
	repo := newFakeTripRepo("t1")
	svc := NewUploadService(repo, store, nil)

	uploadA := domain.FileUpload{FileName: "a.jpg", ContentType: "image/jpeg", Data: []byte("a")}
	uploadB := domain.FileUpload{FileName: "b.jpg", ContentType: "image/jpeg", Data: []byte("b")}

	_, err := svc.AttachImage(context.Background(), "t1", uploadA, "first", [3]string{})
	require.NoError(t, err)
	_, err = svc.AttachImage(context.Background(), "t1", uploadB, "second", [3]string{})
	require.NoError(t, err)

	images, err := repo.GetImages(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "a.jpg", images[0].FileName)
	assert.Equal(t, "b.jpg", images[1].FileName)
}

func TestObjectKey(t *testing.T) {
	key1 := objectKey("t1", "eiffel.jpg")
	key2 := objectKey("t1", "eiffel.jpg")

	assert.True(t, strings.HasPrefix(key1, "trips/t1/"))
	assert.True(t, strings.HasSuffix(key1, ".jpg"))
	// Same filename twice must not collide
	assert.NotEqual(t, key1, key2)

	assert.True(t, strings.HasSuffix(objectKey("t1", "photo.PNG"), ".png"))
	assert.False(t, strings.Contains(objectKey("t2", "eiffel.jpg"), "eiffel"),
		"client filename must not appear in the storage key")
}
