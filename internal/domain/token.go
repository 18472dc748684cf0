package domain

import "time"

// TokenPair is what a successful login or refresh produces: the short-lived
// access token for the response body and the refresh token that travels only
// in an HttpOnly cookie.
type TokenPair struct {
	AccessToken   string
	AccessExpiry  time.Time
	RefreshToken  string
	RefreshExpiry time.Time
}

// RefreshRecord mirrors an issued refresh token server-side. A refresh token
// is usable only while a record with its fingerprint exists, revoked is false
// and expires_at is in the future; the signature check alone is never enough.
// Records are only ever mutated by flipping revoked to true.
type RefreshRecord struct {
	ID        string
	UserID    string
	TokenHash string // deterministic fingerprint (base64url SHA-256)
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
