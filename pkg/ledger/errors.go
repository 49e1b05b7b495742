package ledger

import (
	"errors"
	"fmt"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/store"
)

var (
	// ErrValidation is returned when input is rejected before any write.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a record required by an operation is missing.
	ErrNotFound = store.ErrNotFound

	// ErrStorage is returned when a unit of work fails and is rolled back.
	ErrStorage = errors.New("storage operation failed")
)

// ValidationError describes rejected input.
type ValidationError struct {
	Field  string
	Reason string
	// Row is the index of the offending row in a bulk import, or -1.
	Row int
}

func (e *ValidationError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...), Row: -1}
}

// atRow attaches a bulk import row index to a validation error.
func atRow(err error, row int) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		copied := *ve
		copied.Row = row
		return &copied
	}
	return err
}

func storageError(op string, err error) error {
	return fmt.Errorf("ledger: %s: %w: %w", op, ErrStorage, err)
}
