package storage

import (
	"errors"
	"fmt"
)

// Common storage errors
var (
	// ErrEmptySnapshot is returned when an imported backup has no content.
	ErrEmptySnapshot = errors.New("empty snapshot")

	// ErrMalformedSnapshot is returned when a payload is not a JSON object
	// matching the snapshot layout.
	ErrMalformedSnapshot = errors.New("malformed snapshot")

	// ErrStoreUnavailable is returned when the bucket cannot be opened or written.
	ErrStoreUnavailable = errors.New("snapshot store unavailable")
)

// StorageError wraps errors with the operation and storage key involved.
type StorageError struct {
	// Op is the operation that failed (e.g., "Save", "Import").
	Op string

	// Key is the blob key, when the failure concerns one.
	Key string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	msg := "storage: " + e.Op
	if e.Key != "" {
		msg += fmt.Sprintf(" %q", e.Key)
	}
	if e.Details != "" {
		return fmt.Sprintf("%s failed: %s: %v", msg, e.Details, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", msg, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *StorageError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapStorageError wraps err as a StorageError if it isn't already one.
func WrapStorageError(op, key string, err error, details string) error {
	if err == nil {
		return nil
	}

	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return err
	}

	return &StorageError{Op: op, Key: key, Err: err, Details: details}
}
