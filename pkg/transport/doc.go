// Package transport serves the coverly HTTP API.
//
// The Router wires every route to its handler with an explicit access
// mode from pkg/auth: Require, Optional, or Public. A route without a
// declared mode does not exist; "no auth" is always a visible decision
// at the registration site, never a default.
//
// Handlers translate between the wire DTOs in pkg/api and the domain
// services (stores, letter generation, rendering, billing). Errors
// flow out as the pkg/api error envelope with the HTTP status derived
// from the error type.
//
// Server wraps http.Server with graceful shutdown and the default
// middleware stack (request ID, panic recovery, request logging).
package transport
