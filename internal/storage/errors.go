package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrStorage wraps every failure coming from the underlying database.
	ErrStorage = errors.New("storage failure")

	// ErrCorruptRecord is returned when a stored row cannot be turned into a
	// valid record.
	ErrCorruptRecord = fmt.Errorf("%w: corrupt record", ErrStorage)

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCardNotFound indicates that the requested card does not exist.
	ErrCardNotFound = fmt.Errorf("%w: card", ErrNotFound)

	// ErrCollectionNotFound indicates that the requested collection does not exist.
	ErrCollectionNotFound = fmt.Errorf("%w: collection", ErrNotFound)

	// ErrGrammarNotFound indicates that the requested grammar concept does not exist.
	ErrGrammarNotFound = fmt.Errorf("%w: grammar concept", ErrNotFound)
)

func storageErr(format string, args ...any) error {
	return fmt.Errorf("%w: %w", ErrStorage, fmt.Errorf(format, args...))
}
