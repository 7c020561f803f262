// Package api defines the wire types for the Coverly backend.
//
// This package provides the request and response DTOs for every route, the
// structured error taxonomy, request validation, and prefixed ID generation.
//
// The package has zero external dependencies (Go standard library only) and
// performs no I/O. Handlers decode into these types, services return them,
// and the transport layer serializes them unchanged.
//
// Core types:
//   - [AuthResponse]: register/login result carrying a user view and token pair
//   - [UserView]: public projection of a user record
//   - [FileInfo]: one stored resume or letter object
//   - [Letter]: a generated cover letter
//   - [APIError]: structured error with type, code, param, and message
//
// Error envelope:
//
// Every non-2xx response body is an [ErrorResponse] wrapping a single
// [APIError]; the error type maps one-to-one onto the HTTP status code.
package api
