package transport

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/coverly/coverly/pkg/api"
	"github.com/coverly/coverly/pkg/auth"
	"github.com/coverly/coverly/pkg/store"
)

// handleGetMe handles GET /v1/users/me. The gate resolved the identity
// against the store on this very request, so the view is already fresh.
func (rt *Router) handleGetMe(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, identityView(id))
}

// handleUpdateMe handles PATCH /v1/users/me. Name, preferences, and
// password are the only client-writable fields; the active flag and
// email never change through this route.
func (rt *Router) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	var req api.UpdateUserRequest
	if !rt.decodeJSON(w, r, &req) {
		return
	}
	if verr := api.ValidateUpdateUser(&req); verr != nil {
		WriteAPIError(w, verr)
		return
	}

	u, err := rt.users.GetByID(r.Context(), id.ID)
	if err != nil {
		rt.writeUserStoreError(w, err)
		return
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Preferences != nil {
		u.Preferences = req.Preferences
	}
	if req.Password != nil {
		hash, err := store.HashPassword(*req.Password)
		if err != nil {
			slog.Error("hashing password failed", "error", err)
			WriteAPIError(w, api.NewServerError("profile update failed"))
			return
		}
		u.PasswordHash = hash
	}

	if err := rt.users.Update(r.Context(), u); err != nil {
		rt.writeUserStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userView(u))
}

// writeUserStoreError maps a user store failure on an authenticated
// route. A record that vanished since the gate resolved it means the
// session no longer names an account.
func (rt *Router) writeUserStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		WriteAPIError(w, api.NewUnauthorizedError())
		return
	}
	slog.Error("user store error", "error", err)
	WriteAPIError(w, api.NewUnavailableError("service temporarily unavailable"))
}

// identityView projects a resolved identity onto the wire shape.
func identityView(id *auth.Identity) *api.UserView {
	return &api.UserView{
		ID:          id.ID,
		Name:        id.Name,
		Email:       id.Email,
		Active:      id.Active,
		Roles:       id.Roles,
		Preferences: id.Preferences,
		CreatedAt:   id.CreatedAt,
		UpdatedAt:   id.UpdatedAt,
	}
}
