// Package id provides UUIDv7 generation for saved views and audit events.
package id

import (
	"github.com/google/uuid"
)

// ID is a type alias for UUID.
type ID = uuid.UUID

// New generates a new UUIDv7 (time-ordered UUID), so listings sorted by ID
// follow creation order.
func New() ID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse converts string to ID, panics on error.
// Use only for constants and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// IsNil checks if ID is zero-value.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
