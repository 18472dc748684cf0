// Package tokenx encodes and decodes the signed, expiring claim sets used as
// access and refresh tokens. Access tokens are stateless bearer credentials.
// Every token carries a unique jti so two tokens minted for the same subject
// at the same instant never collide in value: the ledger keys on the refresh
// token string, and a rotation must visibly replace the access token even
// when it happens within the same wall-clock second as the login.
package tokenx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type claim values. Verification always names the type it expects; a
// structurally valid token of the wrong type is rejected exactly like a bad
// signature so callers cannot probe which check failed.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// ErrInvalidToken covers every decode failure: bad signature, expired,
// malformed payload, and type mismatch. Deliberately a single error.
var ErrInvalidToken = errors.New("tokenx: invalid token")

// Claims is the claim set carried by both token kinds.
type Claims struct {
	jwt.RegisteredClaims

	Type string `json:"type"`
}

// Codec signs and verifies tokens with a shared HMAC secret. Construct once
// from configuration and treat as immutable.
type Codec struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec builds a Codec for the given HMAC algorithm (HS256, HS384 or
// HS512).
func NewCodec(secret, algorithm string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("tokenx: empty signing secret")
	}

	switch algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return nil, fmt.Errorf("tokenx: unsupported algorithm %q", algorithm)
	}

	return &Codec{
		secret:     []byte(secret),
		method:     jwt.GetSigningMethod(algorithm),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// AccessTTL reports the configured access-token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL reports the configured refresh-token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// SignAccess mints a short-lived access token for the subject and returns it
// together with its expiry instant. Each call produces a distinct token even
// for the same subject and instant, via a random jti.
func (c *Codec) SignAccess(subject string, now time.Time) (string, time.Time, error) {
	return c.sign(subject, TypeAccess, now, c.accessTTL)
}

// SignRefresh mints a long-lived refresh token for the subject, likewise
// unique per issuance.
func (c *Codec) SignRefresh(subject string, now time.Time) (string, time.Time, error) {
	return c.sign(subject, TypeRefresh, now, c.refreshTTL)
}

func (c *Codec) sign(subject, typ string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		Type: typ,
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("tokenx: sign: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify decodes a token and enforces signature, expiry and the expected type
// claim. Any failure is ErrInvalidToken.
func (c *Codec) Verify(token, expectedType string) (Claims, error) {
	var claims Claims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	// Type mismatch is indistinguishable from a signature failure on purpose.
	if claims.Type != expectedType {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
