package store

import (
	"errors"
	"fmt"
)

// ErrDuplicateCommand is returned by Add when the text is already stored.
// It is recoverable: callers report it and carry on.
var ErrDuplicateCommand = errors.New("the command already exists")

// StorageError reports an I/O, serialization or query failure in a backend.
type StorageError struct {
	// Backend names the failing backend kind ("sqlite", "csv").
	Backend string

	// Op is the operation that failed ("add", "query", ...).
	Op string

	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsDuplicate reports whether err is a duplicate-add error.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateCommand)
}

// IsStorageError reports whether err carries a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

func duplicate(text string) error {
	return fmt.Errorf("%w: %q", ErrDuplicateCommand, text)
}
