package domain

import (
	"context"
)

// FileUpload is the in-memory form of a multipart file payload.
type FileUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// BlobStore defines the interface for binary asset storage.
//
// Put is the only primitive: there is no delete, so an asset written for an
// attach that later fails to persist stays orphaned until an out-of-band
// reconciliation sweep removes it.
type BlobStore interface {
	// Put stores data under key and returns a publicly resolvable URL.
	// Classifies failures as ErrStoreRejected (payload too large or
	// content type not allowed) or ErrStoreUnavailable (transport, auth,
	// timeout).
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
