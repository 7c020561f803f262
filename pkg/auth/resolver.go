package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/coverly/coverly/pkg/auth/token"
	"github.com/coverly/coverly/pkg/store"
)

// UserGetter is the slice of the user store the resolver needs.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*store.User, error)
}

// Resolver turns bearer access tokens into identities. Resolution hits
// the user store on every call, so a deactivated account loses access
// as soon as its in-flight requests finish.
type Resolver struct {
	codec *token.Codec
	users UserGetter
}

// NewResolver creates a resolver over the given token codec and user store.
func NewResolver(codec *token.Codec, users UserGetter) *Resolver {
	return &Resolver{codec: codec, users: users}
}

// Resolve verifies an access token and loads its subject from the user
// store. Exactly one store read per call, and only after the signature
// checks out.
func (r *Resolver) Resolve(ctx context.Context, tokenStr string) (*Identity, error) {
	claims, err := r.codec.Verify(tokenStr, token.KindAccess)
	if err != nil {
		return nil, err
	}

	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}

	u, err := r.users.GetByID(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnknownSubject
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if !u.Active {
		return nil, ErrInactive
	}

	return identityFromUser(u), nil
}

// ResolveOptional resolves a token when present, returning (nil, nil)
// for anonymous callers and for any credential failure. A store outage
// still propagates: an outage must not silently demote authenticated
// traffic to anonymous.
func (r *Resolver) ResolveOptional(ctx context.Context, tokenStr string) (*Identity, error) {
	if tokenStr == "" {
		return nil, nil
	}

	id, err := r.Resolve(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return nil, err
		}
		return nil, nil
	}

	return id, nil
}

// identityFromUser copies the stored record into an Identity.
func identityFromUser(u *store.User) *Identity {
	return &Identity{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Active:      u.Active,
		Roles:       u.Roles,
		Preferences: u.Preferences,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
