// Package errors provides custom error types for the beastforge system.
// These errors enable programmatic error checking for per-record failures
// so the batch converter can log and continue rather than abort a run.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the beastforge system
var (
	// ErrNotFound indicates that a requested record was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that an output file already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")
)

// NotFoundError represents an error when a requested record is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// MissingFieldError reports a required record field that is absent.
// Formatting of the offending record is abandoned; the batch continues.
type MissingFieldError struct {
	Key   string // corpus key (source URL) of the record
	Field string // dotted path of the missing field
}

// Error implements the error interface
func (e *MissingFieldError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("record %s: missing required field %q", e.Key, e.Field)
	}
	return fmt.Sprintf("missing required field %q", e.Field)
}

// Is implements errors.Is support
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewMissingFieldError creates a new MissingFieldError
func NewMissingFieldError(key, field string) *MissingFieldError {
	return &MissingFieldError{Key: key, Field: field}
}

// UnexpectedShapeError reports a record sub-structure whose type does not
// match any recognized shape (e.g. a racial skill modifier that is neither
// a number, a free-text entry, nor a nested mapping).
type UnexpectedShapeError struct {
	Key  string // corpus key of the record
	Path string // dotted path of the offending value
	Got  any    // the value that could not be interpreted
}

// Error implements the error interface
func (e *UnexpectedShapeError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("record %s: unexpected shape at %s: %T", e.Key, e.Path, e.Got)
	}
	return fmt.Sprintf("unexpected shape at %s: %T", e.Path, e.Got)
}

// Is implements errors.Is support
func (e *UnexpectedShapeError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewUnexpectedShapeError creates a new UnexpectedShapeError
func NewUnexpectedShapeError(key, path string, got any) *UnexpectedShapeError {
	return &UnexpectedShapeError{Key: key, Path: path, Got: got}
}

// ConflictError reports a destination file that already exists.
// The original file is left untouched and the record is skipped.
type ConflictError struct {
	Key  string // corpus key of the record being written
	Path string // destination path that already exists
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return fmt.Sprintf("file %s already exists while processing key %s", e.Path, e.Key)
}

// Is implements errors.Is support
func (e *ConflictError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// NewConflictError creates a new ConflictError
func NewConflictError(key, path string) *ConflictError {
	return &ConflictError{Key: key, Path: path}
}

// ParseError represents a failure to parse input data
type ParseError struct {
	Format  string // Format being parsed (json, yaml, etc.)
	File    string // File being parsed, if applicable
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parsing %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("parsing %s: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// IOError represents a file system operation failure
type IOError struct {
	Operation string // Operation being performed (read, write, create, etc.)
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// IsNotFound checks if an error indicates a missing resource
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error indicates an output conflict
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsRecordError checks whether an error is a per-record fault that the
// batch driver should log and skip rather than abort the run.
func IsRecordError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrAlreadyExists)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
