/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a descriptor, file or document is not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a name is already registered to something else
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput is returned when a descriptor or input fails validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when two descriptor sources cannot be merged
	ErrConflict = errors.New("descriptor conflict")

	// ErrMissingType is returned when the backing type of a descriptor is unavailable
	ErrMissingType = errors.New("backing type missing")

	// ErrUnresolvable is returned when a named type cannot be resolved
	ErrUnresolvable = errors.New("type not resolvable")

	// ErrClosed is returned by operations on a closed registry
	ErrClosed = errors.New("registry closed")

	// ErrLoad marks an aggregate load failure
	ErrLoad = errors.New("metadata load failed")
)

// NotFoundError represents an error when a named item is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when a name is already taken
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents a descriptor validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConflictError is raised when the file and inline channels disagree on a
// structural attribute of the same type.
type ConflictError struct {
	Type   string
	Field  string
	First  string
	Second string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting %s for %s: %q vs %q", e.Field, e.Type, e.First, e.Second)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// MissingTypeError is raised at initialization when a descriptor's backing
// type cannot be found.
type MissingTypeError struct {
	Type string
}

func (e *MissingTypeError) Error() string {
	return fmt.Sprintf("backing type %s is not available", e.Type)
}

func (e *MissingTypeError) Is(target error) bool {
	return target == ErrMissingType
}

// ResolutionError reports a type name that the resolver could not resolve.
type ResolutionError struct {
	Type  string
	Cause error
}

func (e *ResolutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot resolve type %s: %v", e.Type, e.Cause)
	}
	return fmt.Sprintf("cannot resolve type %s", e.Type)
}

func (e *ResolutionError) Is(target error) bool {
	return target == ErrUnresolvable
}

func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// LoadError bundles every failure collected during one batch operation.
type LoadError struct {
	Op     string
	Causes []error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d error(s) loading metadata", e.Op, len(e.Causes))
	for _, c := range e.Causes {
		b.WriteString("; ")
		b.WriteString(c.Error())
	}
	return b.String()
}

func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

// Unwrap exposes the collected causes to errors.Is and errors.As.
func (e *LoadError) Unwrap() []error {
	return e.Causes
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(kind, key string) error {
	return &NotFoundError{Type: kind, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(kind, key string) error {
	return &AlreadyExistsError{Type: kind, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConflictError creates a new ConflictError
func NewConflictError(typeName, field, first, second string) error {
	return &ConflictError{Type: typeName, Field: field, First: first, Second: second}
}

// NewMissingTypeError creates a new MissingTypeError
func NewMissingTypeError(typeName string) error {
	return &MissingTypeError{Type: typeName}
}

// NewResolutionError creates a new ResolutionError
func NewResolutionError(typeName string, cause error) error {
	return &ResolutionError{Type: typeName, Cause: cause}
}

// NewLoadError returns nil when causes is empty, otherwise a *LoadError.
// Nested LoadErrors are flattened.
func NewLoadError(op string, causes []error) error {
	var flat []error
	for _, c := range causes {
		if c == nil {
			continue
		}
		var le *LoadError
		if errors.As(c, &le) {
			flat = append(flat, le.Causes...)
			continue
		}
		flat = append(flat, c)
	}
	if len(flat) == 0 {
		return nil
	}
	return &LoadError{Op: op, Causes: flat}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConflict checks if an error is a descriptor conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsMissingType checks if an error reports a missing backing type
func IsMissingType(err error) bool {
	return errors.Is(err, ErrMissingType)
}

// IsUnresolvable checks if an error is a resolution failure
func IsUnresolvable(err error) bool {
	return errors.Is(err, ErrUnresolvable)
}

// IsLoadError checks if an error is an aggregate load failure
func IsLoadError(err error) bool {
	return errors.Is(err, ErrLoad)
}

// Causes returns the collected causes of an aggregate load failure, or the
// error itself when it is not one.
func Causes(err error) []error {
	if err == nil {
		return nil
	}
	var le *LoadError
	if errors.As(err, &le) {
		return le.Causes
	}
	return []error{err}
}
