// Package parcore structured error types
package parcore

import (
	"fmt"
)

// ErrorKind represents categories of runtime errors
type ErrorKind int

const (
	// Invalid policy or runtime configuration
	ErrKindConfig ErrorKind = iota
	// Scratch or pool resource exhaustion
	ErrKindResource
	// Failure inside a parallel region
	ErrKindExecution
	// Pool lifecycle misuse
	ErrKindLifecycle
)

// Error is a structured error carrying the failed operation and its kind.
// Configuration errors are returned from policy constructors; resource and
// execution errors are fatal and reach the caller only as panics.
type Error struct {
	Kind    ErrorKind
	Op      string // operation that failed
	Message string // human-readable message
	Err     error  // underlying error if any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parcore %s error in %s: %s (caused by: %v)",
			e.Kind.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("parcore %s error in %s: %s", e.Kind.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// String returns the error kind as a string
func (k ErrorKind) String() string {
	switch k {
	case ErrKindConfig:
		return "Config"
	case ErrKindResource:
		return "Resource"
	case ErrKindExecution:
		return "Execution"
	case ErrKindLifecycle:
		return "Lifecycle"
	default:
		return "Unknown"
	}
}

// NewConfigError creates an invalid configuration error
func NewConfigError(op, message string) error {
	return &Error{Kind: ErrKindConfig, Op: op, Message: message}
}

// NewResourceError creates a resource exhaustion error
func NewResourceError(op, message string, err error) error {
	return &Error{Kind: ErrKindResource, Op: op, Message: message, Err: err}
}

// NewExecutionError creates an execution error
func NewExecutionError(op, message string, err error) error {
	return &Error{Kind: ErrKindExecution, Op: op, Message: message, Err: err}
}

// Common pre-defined errors

var (
	// ErrRuntimeClosed indicates a dispatch on a closed runtime
	ErrRuntimeClosed = &Error{Kind: ErrKindLifecycle, Op: "dispatch", Message: "runtime is closed"}

	// ErrInvalidRange indicates a range policy with end < begin
	ErrInvalidRange = &Error{Kind: ErrKindConfig, Op: "NewRange", Message: "end must not be less than begin"}

	// ErrInvalidTeamSize indicates a non-positive team or league size
	ErrInvalidTeamSize = &Error{Kind: ErrKindConfig, Op: "NewTeamPolicy", Message: "league and team sizes must not be negative"}
)

// IsConfigError checks if an error is an invalid configuration error
func IsConfigError(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Kind == ErrKindConfig
	}
	return false
}

// IsResourceError checks if an error is a resource exhaustion error
func IsResourceError(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Kind == ErrKindResource
	}
	return false
}
