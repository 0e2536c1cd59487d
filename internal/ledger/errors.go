package ledger

import (
	"errors"
	"fmt"
)

// Common ledger errors
var (
	// ErrDuplicateID is returned when an add operation receives an id that is
	// already present in the target collection.
	ErrDuplicateID = errors.New("id already exists")

	// ErrWalkInClient is returned when deleting the anonymous counter client.
	ErrWalkInClient = errors.New("the walk-in client cannot be deleted")

	// ErrInvalidStatus is returned for a delivery status outside the known set.
	ErrInvalidStatus = errors.New("invalid delivery status")

	// ErrNotFound is returned by read accessors and statements for an unknown id.
	ErrNotFound = errors.New("not found")
)

// LedgerError wraps errors with the operation and entity that caused them.
type LedgerError struct {
	// Op is the ledger operation that failed (e.g., "AddClient").
	Op string

	// ID is the entity id involved, when there is one.
	ID string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *LedgerError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("ledger: %s %q: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("ledger: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *LedgerError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *LedgerError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewLedgerError creates a new LedgerError.
func NewLedgerError(op, id string, err error) *LedgerError {
	return &LedgerError{
		Op:  op,
		ID:  id,
		Err: err,
	}
}
