package auth

import (
	"errors"
	"time"
)

// Identity represents an authenticated caller, resolved against the
// user store on every request.
type Identity struct {
	// ID is the unique user identifier (required, non-empty).
	ID string

	Name  string
	Email string

	// Active is always true for a resolved identity; deactivated
	// accounts fail resolution.
	Active bool

	Roles       []string
	Preferences map[string]any

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Sentinel errors.
var (
	// ErrMissingSubject means a verified token carried no subject claim.
	ErrMissingSubject = errors.New("token has no subject")

	// ErrUnknownSubject means the token's subject matches no stored user.
	ErrUnknownSubject = errors.New("unknown subject")

	// ErrInactive means the subject's account has been deactivated.
	ErrInactive = errors.New("account deactivated")

	// ErrForbidden means the caller is authenticated but not allowed to
	// touch the requested object.
	ErrForbidden = errors.New("access denied")

	// ErrStoreUnavailable means identity resolution failed because the
	// user store could not be reached. It maps to 503, never 401.
	ErrStoreUnavailable = errors.New("user store unavailable")
)
