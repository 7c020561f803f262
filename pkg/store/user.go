package store

import (
	"context"
	"time"
)

// User is a stored account record. The password hash stays server-side;
// api.UserView is the outward wire shape.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	Active       bool
	Roles        []string
	Preferences  map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserStore is the persistence interface for account records.
// Implementations live in the memory and postgres subpackages.
type UserStore interface {
	// Create persists a new user and stamps CreatedAt/UpdatedAt on the
	// passed record. Returns ErrEmailTaken when the email address is
	// already registered.
	Create(ctx context.Context, u *User) error

	// GetByID retrieves a user by ID. Returns ErrNotFound when no such
	// user exists.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email address, compared
	// case-insensitively. Returns ErrNotFound when no such user exists.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update persists the mutable fields of an existing user: name,
	// active, roles, preferences and password hash. The email address is
	// immutable and any change to it is ignored. UpdatedAt is stamped on
	// the passed record. Returns ErrNotFound when no such user exists.
	Update(ctx context.Context, u *User) error

	// HealthCheck verifies the backing store is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
