package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestCommonErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrClosed", ErrClosed, "resource is closed"},
		{"ErrTimeout", ErrTimeout, "operation timed out"},
		{"ErrCapacityExceeded", ErrCapacityExceeded, "capacity exceeded"},
		{"ErrInvalidConfiguration", ErrInvalidConfiguration, "invalid configuration"},
		{"ErrInvalidArgument", ErrInvalidArgument, "invalid argument"},
		{"ErrDuplicateID", ErrDuplicateID, "duplicate id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(fmt.Errorf("wrap: %w", ErrCapacityExceeded)) {
		t.Error("wrapped ErrCapacityExceeded should be retryable")
	}
	if IsRetryable(ErrDuplicateID) {
		t.Error("ErrDuplicateID should not be retryable")
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "without hint",
			err: &ValidationError{
				Module: "eventqueue",
				Field:  "max_events",
				Value:  -1,
				Reason: "cannot be negative",
			},
			want: "eventqueue: invalid max_events=-1 (cannot be negative)",
		},
		{
			name: "with hint",
			err: &ValidationError{
				Module: "eventqueue",
				Field:  "callback",
				Value:  nil,
				Reason: "cannot be nil",
				Hint:   "provide a valid callback",
			},
			want: "eventqueue: invalid callback=<nil> (cannot be nil) - provide a valid callback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Unwrap(t *testing.T) {
	cfgErr := NewValidationError("test", "field", 0, "test")
	if !errors.Is(cfgErr, ErrInvalidConfiguration) {
		t.Error("configuration error should wrap ErrInvalidConfiguration")
	}

	argErr := NewArgumentError("test", "field", 0, "test")
	if !errors.Is(argErr, ErrInvalidArgument) {
		t.Error("argument error should wrap ErrInvalidArgument")
	}
	if errors.Is(argErr, ErrInvalidConfiguration) {
		t.Error("argument error should not wrap ErrInvalidConfiguration")
	}

	if !IsValidationError(fmt.Errorf("outer: %w", argErr)) {
		t.Error("IsValidationError should see through wrapping")
	}
	if IsValidationError(ErrClosed) {
		t.Error("ErrClosed is not a ValidationError")
	}
}

func TestValidationError_WithHint(t *testing.T) {
	err := NewValidationError("test", "field", 0, "invalid")
	if result := err.WithHint("try again"); result != err {
		t.Error("WithHint should return the same instance")
	}
	if err.Hint != "try again" {
		t.Errorf("Hint = %q, want %q", err.Hint, "try again")
	}
}

func TestOperationError(t *testing.T) {
	cause := errors.New("pool shut down")
	err := NewOperationError("eventqueue", "Submit", cause).WithContext("event abc")

	want := "eventqueue.Submit failed: pool shut down (event abc)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("OperationError should wrap the cause error")
	}
}

func TestCallbackFault(t *testing.T) {
	fireAt := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	t.Run("returned error", func(t *testing.T) {
		cause := errors.New("boom")
		f := &CallbackFault{EventID: "ev-1", FireAt: fireAt, Err: cause}
		if !errors.Is(f, cause) {
			t.Error("fault should wrap the callback error")
		}
		if f.IsPanic() {
			t.Error("returned error is not a panic")
		}
		if !strings.Contains(f.Error(), "ev-1") {
			t.Errorf("Error() = %q, should name the event", f.Error())
		}
	})

	t.Run("panic", func(t *testing.T) {
		f := NewPanicFault("ev-2", fireAt, "kaboom", []byte("stack"))
		if !f.IsPanic() {
			t.Error("expected panic fault")
		}
		if !errors.Is(f, ErrCallbackPanic) {
			t.Error("panic fault should wrap ErrCallbackPanic")
		}
		if !strings.Contains(f.Error(), "kaboom") {
			t.Errorf("Error() = %q, should contain the panic value", f.Error())
		}
	})
}
