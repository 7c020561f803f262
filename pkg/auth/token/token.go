// Package token mints and verifies the signed session tokens.
//
// Tokens are HMAC-signed JWTs carrying a subject, an optional email, and a
// kind claim that separates short-lived access tokens from long-lived
// refresh tokens. Verification is strict: the signing algorithm is pinned,
// expiry has zero leeway, and a token of one kind never passes as the other.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes the two token kinds.
type Kind string

const (
	// KindAccess tokens authenticate API requests.
	KindAccess Kind = "access"
	// KindRefresh tokens are exchanged for new access tokens.
	KindRefresh Kind = "refresh"
)

var (
	// ErrMalformed is returned for tokens that cannot be parsed, carry a bad
	// signature, or were signed with an unexpected algorithm.
	ErrMalformed = errors.New("token malformed")
	// ErrExpired is returned for structurally valid tokens whose validity
	// window has closed.
	ErrExpired = errors.New("token expired")
	// ErrWrongKind is returned when a valid token carries the wrong kind,
	// such as a refresh token presented where an access token is required.
	ErrWrongKind = errors.New("token kind mismatch")
)

// Claims is the payload carried by every issued token.
type Claims struct {
	jwt.RegisteredClaims
	Email     string `json:"email,omitempty"`
	TokenType Kind   `json:"type"`
}

// Config holds the codec configuration. It is passed in explicitly by the
// caller; the codec never reads ambient state.
type Config struct {
	// Secret is the HMAC signing key. Required.
	Secret []byte

	// Algorithm selects the HMAC variant: HS256, HS384, or HS512.
	// Default: HS256.
	Algorithm string

	// AccessTTL is the validity window of access tokens.
	AccessTTL time.Duration

	// RefreshTTL is the validity window of refresh tokens.
	RefreshTTL time.Duration

	// Now supplies the codec clock for both issuing and verification.
	// Defaults to time.Now. Tests inject a fixed clock to control expiry.
	Now func() time.Time
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = "HS256"
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Codec issues and verifies tokens with a single symmetric key.
type Codec struct {
	config Config
	method jwt.SigningMethod
}

// New creates a Codec with the given configuration. It fails when the secret
// is empty, the algorithm is unknown, or a TTL is not positive.
func New(cfg Config) (*Codec, error) {
	cfg.applyDefaults()

	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("token: secret is required")
	}

	var method jwt.SigningMethod
	switch cfg.Algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("token: unsupported algorithm %q", cfg.Algorithm)
	}

	if cfg.AccessTTL <= 0 {
		return nil, fmt.Errorf("token: access TTL must be positive, got %v", cfg.AccessTTL)
	}
	if cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("token: refresh TTL must be positive, got %v", cfg.RefreshTTL)
	}

	return &Codec{config: cfg, method: method}, nil
}

// Issue mints a signed token of the given kind for the subject. The issued-at
// timestamp is taken from the codec clock; the expiry is the clock plus the
// TTL configured for the kind.
func (c *Codec) Issue(subject, email string, kind Kind) (string, error) {
	var ttl time.Duration
	switch kind {
	case KindAccess:
		ttl = c.config.AccessTTL
	case KindRefresh:
		ttl = c.config.RefreshTTL
	default:
		return "", fmt.Errorf("token: unknown kind %q", kind)
	}

	now := c.config.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:     email,
		TokenType: kind,
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.config.Secret)
	if err != nil {
		return "", fmt.Errorf("token: signing: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token and checks that it carries the wanted
// kind. Failures are reported through three distinct errors so callers can
// log the real cause while keeping wire responses generic:
//
//   - ErrMalformed: unparseable, bad signature, or wrong algorithm
//   - ErrExpired: the validity window has closed (checked against the codec
//     clock with zero leeway; a token is invalid the moment now reaches exp)
//   - ErrWrongKind: valid token, wrong kind claim
func (c *Codec) Verify(tokenStr string, want Kind) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) { return c.config.Secret, nil },
		jwt.WithValidMethods([]string{c.config.Algorithm}),
		jwt.WithTimeFunc(c.config.Now),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrMalformed
	}
	if !parsed.Valid {
		return nil, ErrMalformed
	}

	if claims.TokenType != want {
		return nil, ErrWrongKind
	}

	return claims, nil
}
