package domain

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound         = errors.New("record not found")
	ErrConflict         = errors.New("conflicting write rejected by storage")
	ErrStoreUnavailable = errors.New("blob store unavailable")
	ErrStoreRejected    = errors.New("blob store rejected payload")
)

// InvalidInputError reports a request that failed validation before any
// external call was made.
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Msg
}

// NewInvalidInput creates an InvalidInputError with the given message.
func NewInvalidInput(msg string) *InvalidInputError {
	return &InvalidInputError{Msg: msg}
}

// IsInvalidInput reports whether err is an InvalidInputError.
func IsInvalidInput(err error) bool {
	var ie *InvalidInputError
	return errors.As(err, &ie)
}

// UploadError wraps a failure in the two-phase attach flow (store bytes, then
// persist the reference). Orphaned reports whether the blob was already
// written when the failure happened, leaving an asset with no Image record.
type UploadError struct {
	Err      error
	Orphaned bool
}

func (e *UploadError) Error() string {
	if e.Orphaned {
		return fmt.Sprintf("upload failed after blob write (orphaned asset): %v", e.Err)
	}
	return fmt.Sprintf("upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
