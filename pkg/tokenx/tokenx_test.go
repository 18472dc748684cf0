package tokenx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/fernlabs/sessiond/pkg/tokenx"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *tokenx.Codec {
	t.Helper()
	c, err := tokenx.NewCodec("test-secret", "HS256", 30*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return c
}

func TestNewCodecRejectsBadConfig(t *testing.T) {
	_, err := tokenx.NewCodec("", "HS256", time.Minute, time.Hour)
	require.Error(t, err)

	_, err = tokenx.NewCodec("secret", "RS256", time.Minute, time.Hour)
	require.Error(t, err)

	_, err = tokenx.NewCodec("secret", "none", time.Minute, time.Hour)
	require.Error(t, err)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now()

	token, expiresAt, err := c.SignAccess("user-1", now)
	require.NoError(t, err)
	require.WithinDuration(t, now.Add(30*time.Minute), expiresAt, time.Second)

	claims, err := c.Verify(token, tokenx.TypeAccess)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, tokenx.TypeAccess, claims.Type)
}

func TestVerifyRejectsExpired(t *testing.T) {
	c := newTestCodec(t)

	// Signed far enough in the past that even leeway cannot save it.
	token, _, err := c.SignAccess("user-1", time.Now().Add(-24*time.Hour))
	require.NoError(t, err)

	_, err = c.Verify(token, tokenx.TypeAccess)
	require.ErrorIs(t, err, tokenx.ErrInvalidToken)
}

func TestVerifyRejectsWrongType(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now()

	access, _, err := c.SignAccess("user-1", now)
	require.NoError(t, err)
	refresh, _, err := c.SignRefresh("user-1", now)
	require.NoError(t, err)

	_, err = c.Verify(access, tokenx.TypeRefresh)
	require.ErrorIs(t, err, tokenx.ErrInvalidToken)

	_, err = c.Verify(refresh, tokenx.TypeAccess)
	require.ErrorIs(t, err, tokenx.ErrInvalidToken)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	c := newTestCodec(t)

	token, _, err := c.SignAccess("user-1", time.Now())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	_, err = c.Verify(tampered, tokenx.TypeAccess)
	require.ErrorIs(t, err, tokenx.ErrInvalidToken)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	c := newTestCodec(t)
	other, err := tokenx.NewCodec("other-secret", "HS256", time.Minute, time.Hour)
	require.NoError(t, err)

	token, _, err := other.SignAccess("user-1", time.Now())
	require.NoError(t, err)

	_, err = c.Verify(token, tokenx.TypeAccess)
	require.ErrorIs(t, err, tokenx.ErrInvalidToken)
}

func TestRefreshTokensCarryDistinctJTI(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now()

	// Same subject, same instant: the jti must still make them distinct
	// because the ledger keys on the token string.
	a, _, err := c.SignRefresh("user-1", now)
	require.NoError(t, err)
	b, _, err := c.SignRefresh("user-1", now)
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	ca, err := c.Verify(a, tokenx.TypeRefresh)
	require.NoError(t, err)
	cb, err := c.Verify(b, tokenx.TypeRefresh)
	require.NoError(t, err)
	require.NotEmpty(t, ca.ID)
	require.NotEqual(t, ca.ID, cb.ID)
}

func TestAccessTokensAreUniquePerIssuance(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now()

	// The iat/exp claims have second granularity, so without a per-issuance
	// jti a login and a rotation inside the same second would mint the same
	// access token string. Sign twice at the exact same instant to pin that.
	a, _, err := c.SignAccess("user-1", now)
	require.NoError(t, err)
	b, _, err := c.SignAccess("user-1", now)
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	ca, err := c.Verify(a, tokenx.TypeAccess)
	require.NoError(t, err)
	cb, err := c.Verify(b, tokenx.TypeAccess)
	require.NoError(t, err)
	require.NotEmpty(t, ca.ID)
	require.NotEqual(t, ca.ID, cb.ID)
}
