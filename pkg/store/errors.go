package store

import "errors"

// Sentinel errors for user storage operations.
var (
	// ErrNotFound is returned when no user matches the given id or email.
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when creating a user whose email address
	// is already registered. Email comparison is case-insensitive.
	ErrEmailTaken = errors.New("email already registered")
)
