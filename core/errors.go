package core

import (
	"errors"
	"fmt"
)

type (
	// NotFoundError reports an operation that referenced a non-existent id.
	NotFoundError struct {
		Resource string
		ID       string
	}

	// ValidationError reports malformed or out-of-range input that reached
	// the service's defensive checks.
	ValidationError struct {
		Field  string
		Reason string
	}

	// StorageError wraps a failure of the underlying object store. The
	// operation is aborted entirely; nothing was committed or broadcast.
	StorageError struct {
		Op  string
		Err error
	}

	// BlobError wraps a failure of the external blob-store collaborator.
	BlobError struct {
		Err error
	}
)

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s not found", e.Resource, e.ID)
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *BlobError) Error() string {
	return fmt.Sprintf("blob store failure: %v", e.Err)
}

func (e *BlobError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
