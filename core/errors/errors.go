// Package errors provides the error kinds shared by the reference parser,
// the search index and the outer surfaces (CLI, HTTP API, MCP tools).
//
// Malformed input is reported with ValidationError or ParseError, unknown
// books with NotFoundError. The only hard failure the core produces is a
// CorpusError, raised when the corpus cannot be loaded. Kind classifies any
// of them for transports that need a stable code.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnsupported       = errors.New("unsupported")
	ErrCorpusUnavailable = errors.New("corpus unavailable")
)

// NotFoundError is a lookup miss: an unknown book, job or resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return e.Resource + " not found: " + e.ID
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError rejects a request parameter. Err, when set, should itself
// wrap ErrInvalidInput; it lets callers match a more specific sentinel such
// as an invalid scope.
type ValidationError struct {
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	msg := "validation failed"
	if e.Field != "" {
		msg += " for " + e.Field
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" (%q)", e.Value)
	}
	return msg + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrInvalidInput
	}
	return e.Err
}

// ParseError is a malformed reference or corpus document.
type ParseError struct {
	Format  string // "reference", "JSON corpus", ...
	Input   string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
	}
	return fmt.Sprintf("failed to parse %s %q: %s", e.Format, e.Input, e.Message)
}

// Unwrap matches ErrInvalidInput as well as the cause.
func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidInput}
	}
	return []error{ErrInvalidInput, e.Err}
}

// IOError is a failed file or network operation.
type IOError struct {
	Operation string
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// UnsupportedError is a corpus format or feature this build cannot handle.
type UnsupportedError struct {
	Feature string
	Reason  string
}

func (e *UnsupportedError) Error() string {
	if e.Reason == "" {
		return "unsupported " + e.Feature
	}
	return "unsupported " + e.Feature + ": " + e.Reason
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }

// CorpusError reports that a corpus source could not produce a corpus.
// It matches both ErrCorpusUnavailable and the underlying cause.
type CorpusError struct {
	Source string
	Err    error
}

func (e *CorpusError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("corpus unavailable: %v", e.Err)
	}
	return fmt.Sprintf("corpus unavailable (%s): %v", e.Source, e.Err)
}

func (e *CorpusError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCorpusUnavailable}
	}
	return []error{ErrCorpusUnavailable, e.Err}
}

func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func NewIO(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

func NewParse(format, input, message string) *ParseError {
	return &ParseError{Format: format, Input: input, Message: message}
}

func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{Feature: feature, Reason: reason}
}

func NewCorpus(source string, err error) *CorpusError {
	return &CorpusError{Source: source, Err: err}
}

// Wrap prefixes err with message, keeping it matchable. Nil stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Kind values returned by Kind.
const (
	KindNotFound          = "not_found"
	KindInvalidInput      = "invalid_input"
	KindUnsupported       = "unsupported"
	KindCorpusUnavailable = "corpus_unavailable"
	KindInternal          = "internal"
)

// Kind classifies err by the sentinel it matches. A corpus failure wins over
// the cause it wraps, so a missing corpus file is not reported as not_found.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCorpusUnavailable):
		return KindCorpusUnavailable
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrUnsupported):
		return KindUnsupported
	}
	return KindInternal
}
