// Package idgen provides event id generators.
package idgen

import (
	"github.com/google/uuid"
	"github.com/rs/xid"
)

// Generator returns a new unique id on every call.
type Generator func() string

// UUID returns a random (version 4) UUID string.
func UUID() string {
	return uuid.NewString()
}

// XID returns a 20-character globally unique id that sorts by creation time.
func XID() string {
	return xid.New().String()
}
