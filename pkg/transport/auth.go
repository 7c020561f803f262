package transport

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/coverly/coverly/pkg/api"
	"github.com/coverly/coverly/pkg/auth/token"
	"github.com/coverly/coverly/pkg/observability"
	"github.com/coverly/coverly/pkg/store"
)

// handleRegister handles POST /v1/auth/register.
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !rt.decodeJSON(w, r, &req) {
		return
	}
	if verr := api.ValidateRegister(&req); verr != nil {
		WriteAPIError(w, verr)
		return
	}

	hash, err := store.HashPassword(req.Password)
	if err != nil {
		slog.Error("hashing password failed", "error", err)
		WriteAPIError(w, api.NewServerError("registration failed"))
		return
	}

	u := &store.User{
		ID:           api.NewUserID(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Active:       true,
		Roles:        []string{"user"},
	}

	if err := rt.users.Create(r.Context(), u); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			WriteAPIError(w, api.NewConflictError("email", "email already registered"))
			return
		}
		slog.Error("creating user failed", "error", err)
		WriteAPIError(w, api.NewUnavailableError("service temporarily unavailable"))
		return
	}

	rt.writeAuthSuccess(w, u, http.StatusCreated, "account created")
}

// handleLogin handles POST /v1/auth/login.
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !rt.decodeJSON(w, r, &req) {
		return
	}
	if verr := api.ValidateLogin(&req); verr != nil {
		WriteAPIError(w, verr)
		return
	}

	u, err := rt.users.GetByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Error("login lookup failed", "error", err)
		WriteAPIError(w, api.NewUnavailableError("service temporarily unavailable"))
		return
	}

	// An unknown email and a wrong password produce the same response,
	// so login never confirms whether an address is registered.
	if err != nil || !store.CheckPassword(u.PasswordHash, req.Password) {
		writeLoginFailure(w, r, "bad_credentials")
		return
	}
	if !u.Active {
		writeLoginFailure(w, r, "inactive")
		return
	}

	rt.writeAuthSuccess(w, u, http.StatusOK, "login successful")
}

// handleRefresh handles POST /v1/auth/refresh. A valid refresh token is
// exchanged for a new access token carrying the same subject and email.
// The presented refresh token is not rotated and stays valid until it
// expires.
func (rt *Router) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshRequest
	if !rt.decodeJSON(w, r, &req) {
		return
	}
	if verr := api.ValidateRefresh(&req); verr != nil {
		WriteAPIError(w, verr)
		return
	}

	claims, err := rt.codec.Verify(req.RefreshToken, token.KindRefresh)
	if err != nil {
		rejectRefresh(w, r, err, refreshFailureReason(err))
		return
	}
	if claims.Subject == "" {
		rejectRefresh(w, r, errors.New("refresh token has no subject"), "missing_subject")
		return
	}

	access, err := rt.codec.Issue(claims.Subject, claims.Email, token.KindAccess)
	if err != nil {
		slog.Error("issuing access token failed", "error", err)
		WriteAPIError(w, api.NewServerError("token refresh failed"))
		return
	}

	writeJSON(w, http.StatusOK, api.RefreshResponse{
		AccessToken: access,
		TokenType:   api.TokenTypeBearer,
	})
}

// writeAuthSuccess mints a token pair for u and writes the auth envelope.
func (rt *Router) writeAuthSuccess(w http.ResponseWriter, u *store.User, status int, message string) {
	access, err := rt.codec.Issue(u.ID, u.Email, token.KindAccess)
	if err != nil {
		slog.Error("issuing access token failed", "error", err)
		WriteAPIError(w, api.NewServerError("issuing tokens failed"))
		return
	}
	refresh, err := rt.codec.Issue(u.ID, u.Email, token.KindRefresh)
	if err != nil {
		slog.Error("issuing refresh token failed", "error", err)
		WriteAPIError(w, api.NewServerError("issuing tokens failed"))
		return
	}

	writeJSON(w, status, api.AuthResponse{
		Success:      true,
		Message:      message,
		User:         userView(u),
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    api.TokenTypeBearer,
	})
}

// writeLoginFailure writes the uniform login rejection. The real reason
// is logged and counted, never sent to the client.
func writeLoginFailure(w http.ResponseWriter, r *http.Request, reason string) {
	slog.Warn("login failed",
		"reason", reason,
		"remote_addr", r.RemoteAddr,
	)
	observability.AuthFailuresTotal.WithLabelValues(reason).Inc()

	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSON(w, http.StatusUnauthorized, api.AuthResponse{
		Success: false,
		Message: "invalid email or password",
	})
}

// rejectRefresh writes the uniform 401 for a failed refresh exchange.
func rejectRefresh(w http.ResponseWriter, r *http.Request, err error, reason string) {
	slog.Warn("refresh rejected",
		"reason", reason,
		"remote_addr", r.RemoteAddr,
		"error", err,
	)
	observability.AuthFailuresTotal.WithLabelValues(reason).Inc()
	WriteAPIError(w, api.NewUnauthorizedError())
}

// refreshFailureReason maps codec errors to metric label values.
func refreshFailureReason(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return "expired"
	case errors.Is(err, token.ErrWrongKind):
		return "wrong_kind"
	default:
		return "malformed"
	}
}

// userView projects a stored record onto the wire shape.
func userView(u *store.User) *api.UserView {
	return &api.UserView{
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
