package corkboard

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	// ErrNotFound is returned when an operation references an unknown card.
	ErrNotFound = errors.New("corkboard: not found")
	// ErrStorage marks failures reported by the storage port.
	ErrStorage = errors.New("corkboard: storage failure")
	// ErrCorruptRecord marks a persisted record that cannot rebuild a board.
	ErrCorruptRecord = errors.New("corkboard: corrupt record")
	// ErrIndexOutOfRange is returned when a recent-list index has no entry.
	ErrIndexOutOfRange = errors.New("corkboard: index out of range")
	// ErrBusy is returned when a save or open is requested while another is
	// still waiting on the storage port.
	ErrBusy = errors.New("corkboard: storage request in flight")
)

// StorageError wraps a failure reported by the storage port.
type StorageError struct {
	Op   string // "open", "choose", "write", "recent"
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("corkboard: %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("corkboard: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStorage) true for every StorageError.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// CorruptRecordError aggregates every problem found in a persisted record.
// A board is never partially built from such a record.
type CorruptRecordError struct {
	Err error
}

func (e *CorruptRecordError) Error() string {
	n := len(multierr.Errors(e.Err))
	if n == 1 {
		return fmt.Sprintf("corkboard: corrupt record: %v", e.Err)
	}
	return fmt.Sprintf("corkboard: corrupt record (%d problems): %v", n, e.Err)
}

func (e *CorruptRecordError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrCorruptRecord) true for every CorruptRecordError.
func (e *CorruptRecordError) Is(target error) bool { return target == ErrCorruptRecord }

// Problems lists the individual problems.
func (e *CorruptRecordError) Problems() []error {
	return multierr.Errors(e.Err)
}

func corrupt(errs ...error) error {
	combined := multierr.Combine(errs...)
	if combined == nil {
		return nil
	}
	return &CorruptRecordError{Err: combined}
}

func notFound(id CardID) error {
	return fmt.Errorf("card %d: %w", id, ErrNotFound)
}
