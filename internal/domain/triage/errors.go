package triage

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrInvalidIdentity  = errors.New("invalid identity number")
	ErrNotFound         = errors.New("patient not found")
	ErrDuplicatePatient = errors.New("patient already registered")
	ErrDetailsRequired  = errors.New("personal details are required for a new patient")
	ErrPersistence      = errors.New("persistence failure")
	ErrNoData           = errors.New("no data for statistics")
)

// ValidationError names the field that failed construction and its valid
// range.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalidField(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// PersistenceError reports a failed load or save of the roster document.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
