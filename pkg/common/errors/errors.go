package errors

import (
	"errors"
	"fmt"
	"time"
)

// Common error types used across the eventq library

var (
	// ErrClosed indicates that an operation was attempted on a closed resource
	ErrClosed = errors.New("resource is closed")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCapacityExceeded indicates that a capacity limit was exceeded
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidArgument indicates an invalid argument passed to an operation
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDuplicateID indicates that a caller-supplied id collides with a pending event
	ErrDuplicateID = errors.New("duplicate id")

	// ErrCallbackPanic marks a callback fault caused by a recovered panic
	ErrCallbackPanic = errors.New("callback panicked")
)

// IsRetryable returns true if the error indicates a condition that might
// be resolved by retrying the operation
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrCapacityExceeded)
}

// ValidationError describes a rejected argument or configuration value.
type ValidationError struct {
	Module string
	Field  string
	Value  interface{}
	Reason string
	Hint   string

	// Err is the sentinel the error unwraps to. Nil means ErrInvalidConfiguration.
	Err error
}

// NewValidationError creates a configuration ValidationError.
func NewValidationError(module, field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{
		Module: module,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// NewArgumentError creates a ValidationError that unwraps to ErrInvalidArgument.
func NewArgumentError(module, field string, value interface{}, reason string) *ValidationError {
	v := NewValidationError(module, field, value, reason)
	v.Err = ErrInvalidArgument
	return v
}

// WithHint attaches a remediation hint and returns the same error for chaining.
func (e *ValidationError) WithHint(hint string) *ValidationError {
	e.Hint = hint
	return e
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s=%v (%s)", e.Module, e.Field, e.Value, e.Reason)
	if e.Hint != "" {
		msg += " - " + e.Hint
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidConfiguration
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// OperationError records a failed operation inside a module.
type OperationError struct {
	Module    string
	Operation string
	Cause     error
	Context   string
}

// NewOperationError creates an OperationError.
func NewOperationError(module, operation string, cause error) *OperationError {
	return &OperationError{
		Module:    module,
		Operation: operation,
		Cause:     cause,
	}
}

// WithContext attaches extra detail and returns the same error for chaining.
func (e *OperationError) WithContext(ctx string) *OperationError {
	e.Context = ctx
	return e
}

func (e *OperationError) Error() string {
	msg := fmt.Sprintf("%s.%s failed: %v", e.Module, e.Operation, e.Cause)
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	return e.Cause
}

// CallbackFault is an error raised by user callback code, or by the hand-off
// to the execution context, for a single event. It never affects other events.
type CallbackFault struct {
	EventID string
	FireAt  time.Time
	Err     error

	// Panic holds the recovered value when the callback panicked.
	Panic interface{}
	Stack []byte
}

// NewPanicFault builds a fault from a recovered panic value.
func NewPanicFault(eventID string, fireAt time.Time, recovered interface{}, stack []byte) *CallbackFault {
	return &CallbackFault{
		EventID: eventID,
		FireAt:  fireAt,
		Err:     fmt.Errorf("%w: %v", ErrCallbackPanic, recovered),
		Panic:   recovered,
		Stack:   stack,
	}
}

func (f *CallbackFault) Error() string {
	return fmt.Sprintf("event %s (due %s): %v", f.EventID, f.FireAt.Format(time.RFC3339Nano), f.Err)
}

func (f *CallbackFault) Unwrap() error {
	return f.Err
}

// IsPanic reports whether the fault came from a recovered panic.
func (f *CallbackFault) IsPanic() bool {
	return f.Panic != nil
}
