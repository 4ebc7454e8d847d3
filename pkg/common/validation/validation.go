package validation

import (
	"time"

	eqerrors "github.com/vnykmshr/eventq/pkg/common/errors"
)

// ValidatePositive validates that an integer value is positive (> 0).
// Returns a ValidationError if the value is not positive.
func ValidatePositive(module, field string, value int) error {
	if value <= 0 {
		return eqerrors.NewValidationError(module, field, value, "must be positive").
			WithHint("value must be greater than 0")
	}
	return nil
}

// ValidateNonNegative validates that an integer value is non-negative (>= 0).
func ValidateNonNegative(module, field string, value int) error {
	if value < 0 {
		return eqerrors.NewValidationError(module, field, value, "cannot be negative").
			WithHint("use 0 or a positive value")
	}
	return nil
}

// ValidateNonNegativeDuration validates that a duration is not negative.
func ValidateNonNegativeDuration(module, field string, value time.Duration) error {
	if value < 0 {
		return eqerrors.NewValidationError(module, field, value, "cannot be negative").
			WithHint("use 0 to disable")
	}
	return nil
}

// RequireNotNil validates that a caller-supplied argument is present.
// The returned error unwraps to ErrInvalidArgument.
func RequireNotNil(module, field string, present bool) error {
	if !present {
		return eqerrors.NewArgumentError(module, field, nil, "cannot be nil").
			WithHint("provide a valid " + field)
	}
	return nil
}

// RequireNotEmpty validates that a caller-supplied string argument is not empty.
func RequireNotEmpty(module, field string, value string) error {
	if value == "" {
		return eqerrors.NewArgumentError(module, field, value, "cannot be empty").
			WithHint("provide a non-empty " + field)
	}
	return nil
}

// RequireTime validates that a caller-supplied timestamp is set.
func RequireTime(module, field string, value time.Time) error {
	if value.IsZero() {
		return eqerrors.NewArgumentError(module, field, value, "cannot be zero").
			WithHint("use an absolute timestamp")
	}
	return nil
}

// RequireAfter validates that value lies strictly after ref.
func RequireAfter(module, field string, value, ref time.Time) error {
	if !value.After(ref) {
		return eqerrors.NewArgumentError(module, field, value, "must be in the future").
			WithHint("strict policy rejects fire times at or before now")
	}
	return nil
}
