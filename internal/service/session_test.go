package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/fernlabs/sessiond/internal/domain"
	"github.com/fernlabs/sessiond/internal/service"
	"github.com/fernlabs/sessiond/internal/store/drivers/sqlite"
	"github.com/fernlabs/sessiond/pkg/cryptox"
	"github.com/fernlabs/sessiond/pkg/idx"
	"github.com/fernlabs/sessiond/pkg/tokenx"
	"github.com/stretchr/testify/require"
)

func newSessionService(t *testing.T) (*service.SessionService, *sqlite.Store) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := tokenx.NewCodec("test-secret", "HS256", 30*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	return &service.SessionService{
		Store:  st,
		Codec:  codec,
		Hasher: cryptox.NewHasher("test-pepper"),
	}, st
}

func TestRegisterCreatesUserProfileAndPreferences(t *testing.T) {
	s, st := newSessionService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "a@x.com", "pw123", "Alice")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "a@x.com", user.Email)
	require.Equal(t, "Alice", user.Name)
	require.False(t, user.IsAdmin)
	require.NotEqual(t, "pw123", user.PasswordHash)

	_, err = st.Profiles().GetProfileByUserID(ctx, user.ID)
	require.NoError(t, err)
	_, err = st.Preferences().GetPreferencesByUserID(ctx, user.ID)
	require.NoError(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s, _ := newSessionService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "pw123", "Alice")
	require.NoError(t, err)

	_, err = s.Register(ctx, "a@x.com", "other", "Imposter")
	require.ErrorIs(t, err, service.ErrDuplicateRegistration)
}

func TestLoginIssuesVerifiablePair(t *testing.T) {
	s, st := newSessionService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "a@x.com", "pw123", "Alice")
	require.NoError(t, err)

	pair, err := s.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)

	access, err := s.Codec.Verify(pair.AccessToken, tokenx.TypeAccess)
	require.NoError(t, err)
	require.Equal(t, user.ID, access.Subject)

	refresh, err := s.Codec.Verify(pair.RefreshToken, tokenx.TypeRefresh)
	require.NoError(t, err)
	require.Equal(t, user.ID, refresh.Subject)

	// The refresh token must be mirrored in the ledger.
	rec, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(pair.RefreshToken))
	require.NoError(t, err)
	require.Equal(t, user.ID, rec.UserID)
	require.False(t, rec.Revoked)
	require.WithinDuration(t, pair.RefreshExpiry, rec.ExpiresAt, time.Second)
}

func TestLoginFailsIdenticallyForUnknownUserAndWrongPassword(t *testing.T) {
	s, _ := newSessionService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "pw123", "Alice")
	require.NoError(t, err)

	_, wrongPassword := s.Login(ctx, "a@x.com", "nope")
	_, unknownUser := s.Login(ctx, "ghost@x.com", "pw123")

	require.ErrorIs(t, wrongPassword, service.ErrAuthentication)
	require.ErrorIs(t, unknownUser, service.ErrAuthentication)
	require.Equal(t, wrongPassword, unknownUser)
}

func TestRefreshRotatesAndRejectsReplay(t *testing.T) {
	s, st := newSessionService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "pw123", "Alice")
	require.NoError(t, err)
	pair, err := s.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)

	rotated, err := s.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.AccessToken, rotated.AccessToken)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The consumed token's record is revoked, not deleted.
	rec, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(pair.RefreshToken))
	require.NoError(t, err)
	require.True(t, rec.Revoked)

	// Replaying the consumed token must fail; the successor still works.
	_, err = s.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrAuthentication)

	_, err = s.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsUnledgeredToken(t *testing.T) {
	s, _ := newSessionService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "a@x.com", "pw123", "Alice")
	require.NoError(t, err)

	// Signature-valid refresh token that was never persisted.
	token, _, err := s.Codec.SignRefresh(user.ID, time.Now())
	require.NoError(t, err)

	_, err = s.Refresh(ctx, token)
	require.ErrorIs(t, err, service.ErrAuthentication)
}

func TestRefreshRejectsExpiredRecord(t *testing.T) {
	s, st := newSessionService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "a@x.com", "pw123", "Alice")
	require.NoError(t, err)

	token, _, err := s.Codec.SignRefresh(user.ID, time.Now())
	require.NoError(t, err)

	// Ledger record already past its expiry even though the signature is
	// still fine; the record check must win.
	require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshRecord{
		ID:        idx.New().String(),
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	_, err = s.Refresh(ctx, token)
	require.ErrorIs(t, err, service.ErrAuthentication)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	s, _ := newSessionService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "pw123", "Alice")
	require.NoError(t, err)
	pair, err := s.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)

	_, err = s.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, service.ErrAuthentication)
}

func TestRefreshRejectsMissingSubject(t *testing.T) {
	s, st := newSessionService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "a@x.com", "pw123", "Alice")
	require.NoError(t, err)

	// Signature-valid refresh token with no sub claim, backed by a live
	// ledger record.
	token, expiry, err := s.Codec.SignRefresh("", time.Now())
	require.NoError(t, err)
	require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshRecord{
		ID:        idx.New().String(),
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: expiry,
	}))

	_, err = s.Refresh(ctx, token)
	require.ErrorIs(t, err, service.ErrInvalidTokenPayload)
}

func TestAuthenticate(t *testing.T) {
	s, _ := newSessionService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "a@x.com", "pw123", "Alice")
	require.NoError(t, err)
	pair, err := s.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)

	got, err := s.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	_, err = s.Authenticate(ctx, "garbage")
	require.ErrorIs(t, err, service.ErrAuthentication)

	// A refresh token is not a valid bearer credential.
	_, err = s.Authenticate(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrAuthentication)
}

func TestAuthenticateRejectsDeletedPrincipal(t *testing.T) {
	s, st := newSessionService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "a@x.com", "pw123", "Alice")
	require.NoError(t, err)
	pair, err := s.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)

	require.NoError(t, st.Users().DeleteUser(ctx, user.ID))

	_, err = s.Authenticate(ctx, pair.AccessToken)
	require.ErrorIs(t, err, service.ErrAuthentication)
}

func TestLogoutRevokesAndIsIdempotent(t *testing.T) {
	s, st := newSessionService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "pw123", "Alice")
	require.NoError(t, err)
	pair, err := s.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, pair.RefreshToken))

	rec, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(pair.RefreshToken))
	require.NoError(t, err)
	require.True(t, rec.Revoked)

	// A logged-out token cannot refresh.
	_, err = s.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrAuthentication)

	// Repeats and junk are no-ops.
	require.NoError(t, s.Logout(ctx, pair.RefreshToken))
	require.NoError(t, s.Logout(ctx, "not-a-token"))
	require.NoError(t, s.Logout(ctx, ""))
}

func TestConcurrentRefreshOnlyOneWins(t *testing.T) {
	s, _ := newSessionService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "pw123", "Alice")
	require.NoError(t, err)
	pair, err := s.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)

	type result struct {
		pair domain.TokenPair
		err  error
	}
	results := make(chan result, 2)
	for i := 0; i < 2; i++ {
		go func() {
			p, err := s.Refresh(ctx, pair.RefreshToken)
			results <- result{pair: p, err: err}
		}()
	}

	var wins, losses int
	for i := 0; i < 2; i++ {
		r := <-results
		if r.err == nil {
			wins++
		} else {
			require.ErrorIs(t, r.err, service.ErrAuthentication)
			losses++
		}
	}
	require.Equal(t, 1, wins, "exactly one rotation may mint a successor")
	require.Equal(t, 1, losses)
}
