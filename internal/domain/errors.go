// Package domain contains the quote collection engine: records, drafts,
// normalisation, id generation, merge, query and the error taxonomy.
// Domain errors are infrastructure-agnostic; adapters map them to HTTP
// responses or CLI messages.
package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every typed error below unwraps to one of them, so callers
// branch with errors.Is or the Is helpers and never on message text.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrValidation  = errors.New("validation failed")
	ErrForbidden   = errors.New("forbidden")
	ErrUnavailable = errors.New("unavailable")
	ErrFormat      = errors.New("invalid format")
	ErrParse       = errors.New("malformed document")
	ErrIO          = errors.New("i/o failure")
	ErrSkipped     = errors.New("draft skipped")
)

// NotFoundError names the missing entity, usually a quote id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}

	return fmt.Sprintf("no %s with id %q", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports state that changed underneath an operation, such
// as a collection file rewritten by another process.
type ConflictError struct {
	Entity string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s changed concurrently: %s", e.Entity, e.Reason)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

// ValidationError rejects a single input. Field is empty when the problem
// is not tied to one field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}

	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ForbiddenError refuses a destructive operation, typically one that was
// not confirmed.
type ForbiddenError struct {
	Operation string
	Reason    string
}

func (e *ForbiddenError) Error() string {
	if e.Reason == "" {
		return e.Operation + " refused"
	}

	return fmt.Sprintf("%s refused: %s", e.Operation, e.Reason)
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

func NewForbiddenError(operation, reason string) error {
	return &ForbiddenError{Operation: operation, Reason: reason}
}

// UnavailableError reports a collaborator that is missing or unreachable:
// the clipboard, the export directory, the remote library.
type UnavailableError struct {
	Service string
	Reason  string
}

func (e *UnavailableError) Error() string {
	if e.Reason == "" {
		return e.Service + " unavailable"
	}

	return fmt.Sprintf("%s unavailable: %s", e.Service, e.Reason)
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// FormatError reports a document whose shape is wrong. The operation that
// received it is aborted without partial mutation.
type FormatError struct {
	Reason string `json:"reason"`
}

func (e *FormatError) Error() string {
	return "invalid format: " + e.Reason
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// NewFormatError creates a format error with the given reason.
func NewFormatError(reason string) error {
	return &FormatError{Reason: reason}
}

// ParseError reports malformed JSON text.
type ParseError struct {
	// Offset is the byte offset of the syntax error, or 0 when unknown.
	Offset int64
	Cause  error
}

func (e *ParseError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("malformed document at offset %d: %v", e.Offset, e.Cause)
	}

	return fmt.Sprintf("malformed document: %v", e.Cause)
}

// Unwrap exposes both the sentinel and the decoder error.
func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Cause}
}

// IOError reports a failed write or read against an external medium.
// In-memory state is unchanged when a store operation returns one.
type IOError struct {
	Op    string
	Cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap exposes both the sentinel and the underlying failure.
func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Cause}
}

// NewIOError wraps cause as an IOError for the named operation.
func NewIOError(op string, cause error) error {
	return &IOError{Op: op, Cause: cause}
}

// ValidationSkip marks a draft that was dropped from a merge or import.
// It is not a hard error; bulk operations count it and continue.
type ValidationSkip struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

func (e *ValidationSkip) Error() string {
	return fmt.Sprintf("draft %d skipped: %s", e.Index, e.Reason)
}

func (e *ValidationSkip) Unwrap() error { return ErrSkipped }

// Kind checks, equivalent to errors.Is against the matching sentinel.

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
func IsFormat(err error) bool { return errors.Is(err, ErrFormat) }
func IsParse(err error) bool { return errors.Is(err, ErrParse) }
func IsIO(err error) bool { return errors.Is(err, ErrIO) }
func IsSkipped(err error) bool { return errors.Is(err, ErrSkipped) }
