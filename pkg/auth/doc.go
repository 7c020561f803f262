// Package auth resolves bearer tokens into account identities and
// guards HTTP routes.
//
// Every route declares its access mode explicitly through a Gate:
// Require rejects requests without a valid access token, Optional
// resolves an identity when one is presented and proceeds anonymously
// otherwise, and Public marks the handful of routes that never read
// credentials. Rejections are uniform: a client learns only that
// authentication is required, never why its token was refused.
//
// Token signing and verification live in the token subpackage; this
// package owns the step from verified claims to a stored, active user.
package auth
