package domain

import (
	"errors"
	"fmt"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrCorruptData  = errors.New("corrupt data")
	ErrPersistence  = errors.New("persistence failure")
	ErrInvalidItem  = errors.New("invalid item")
)

// ItemNotFoundError reports a mutation against an id absent from the collection.
type ItemNotFoundError struct {
	ID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("item %q not found", e.ID)
}

func (e *ItemNotFoundError) Is(target error) bool { return target == ErrItemNotFound }

// CorruptDataError means stored data exists but is not a valid item collection.
type CorruptDataError struct {
	Source string
	Err    error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("corrupt data in %s: %v", e.Source, e.Err)
}

func (e *CorruptDataError) Unwrap() error { return e.Err }

func (e *CorruptDataError) Is(target error) bool { return target == ErrCorruptData }

// PersistenceError wraps an I/O failure while loading or saving.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// ValidationError reports input that cannot become a FurnitureItem.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidItem }
