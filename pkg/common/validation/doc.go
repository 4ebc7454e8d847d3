// Package validation provides common validation utilities for arguments and
// configuration parameters across the eventq library.
//
// Configuration helpers (Validate*) return errors wrapping
// ErrInvalidConfiguration; argument helpers (Require*) return errors wrapping
// ErrInvalidArgument so callers of Add can tell the two apart.
package validation
