package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coverly/coverly/pkg/api"
	"github.com/coverly/coverly/pkg/auth/token"
	"github.com/coverly/coverly/pkg/observability"
)

// Gate wraps handlers with an explicit access mode. Every route is
// registered through exactly one of Require, Optional, or Public.
type Gate struct {
	resolver *Resolver
}

// NewGate creates a Gate over the given resolver.
func NewGate(resolver *Resolver) *Gate {
	return &Gate{resolver: resolver}
}

// Require rejects requests that do not carry a valid access token for
// an active account. All credential failures produce the same 401
// response; the reason is logged and counted, never sent to the client.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := BearerToken(r)
		if tokenStr == "" {
			rejectUnauthorized(w, r, errors.New("no bearer token"), "missing_token")
			return
		}

		id, err := g.resolver.Resolve(r.Context(), tokenStr)
		if err != nil {
			if errors.Is(err, ErrStoreUnavailable) {
				slog.Error("identity resolution unavailable",
					"path", r.URL.Path,
					"error", err,
				)
				writeError(w, http.StatusServiceUnavailable,
					api.NewUnavailableError("service temporarily unavailable"))
				return
			}
			rejectUnauthorized(w, r, err, failureReason(err))
			return
		}

		next.ServeHTTP(w, r.WithContext(SetIdentity(r.Context(), id)))
	})
}

// Optional resolves an identity when a valid token is presented and
// proceeds anonymously otherwise. Only a store outage fails the request.
func (g *Gate) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := g.resolver.ResolveOptional(r.Context(), BearerToken(r))
		if err != nil {
			slog.Error("identity resolution unavailable",
				"path", r.URL.Path,
				"error", err,
			)
			writeError(w, http.StatusServiceUnavailable,
				api.NewUnavailableError("service temporarily unavailable"))
			return
		}

		if id != nil {
			r = r.WithContext(SetIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// Public marks a route as deliberately unauthenticated.
func (g *Gate) Public(next http.Handler) http.Handler {
	return next
}

// BearerToken extracts the token from the Authorization header.
// Returns "" when the header is absent or not a bearer scheme.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// rejectUnauthorized writes the uniform 401 response and records the
// internal failure reason.
func rejectUnauthorized(w http.ResponseWriter, r *http.Request, err error, reason string) {
	slog.Warn("authentication failed",
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
		"reason", reason,
		"error", err,
	)
	observability.AuthFailuresTotal.WithLabelValues(reason).Inc()

	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, api.NewUnauthorizedError())
}

// failureReason maps resolution errors to metric label values.
func failureReason(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return "expired"
	case errors.Is(err, token.ErrWrongKind):
		return "wrong_kind"
	case errors.Is(err, token.ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrMissingSubject):
		return "missing_subject"
	case errors.Is(err, ErrUnknownSubject):
		return "unknown_subject"
	case errors.Is(err, ErrInactive):
		return "inactive"
	default:
		return "invalid"
	}
}

// writeError sends a JSON error envelope.
func writeError(w http.ResponseWriter, status int, apiErr *api.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: apiErr})
}
