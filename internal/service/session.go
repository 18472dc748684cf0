package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fernlabs/sessiond/internal/domain"
	"github.com/fernlabs/sessiond/internal/store"
	"github.com/fernlabs/sessiond/pkg/cryptox"
	"github.com/fernlabs/sessiond/pkg/idx"
	"github.com/fernlabs/sessiond/pkg/slogx"
	"github.com/fernlabs/sessiond/pkg/tokenx"
)

var (
	// ErrAuthentication covers bad credentials, missing/invalid/expired/
	// wrong-type tokens, dead refresh records and principals that vanished
	// after issuance. One error for all of them: the response must never
	// reveal which check failed.
	ErrAuthentication = errors.New("authentication_failed")

	// ErrInvalidTokenPayload flags a signature-valid token missing its sub
	// claim. Externally still unauthorized; kept distinct for observability.
	ErrInvalidTokenPayload = errors.New("invalid_token_payload")

	// ErrDuplicateRegistration reports an already-registered email.
	ErrDuplicateRegistration = errors.New("duplicate_registration")
)

// SessionService orchestrates login, refresh rotation, logout and bearer
// authentication over the hasher, the token codec and the refresh ledger.
type SessionService struct {
	Store  store.Store
	Codec  *tokenx.Codec
	Hasher *cryptox.Hasher
}

// Register creates a new principal together with its empty profile and
// preferences rows. The email must not be taken.
func (s *SessionService) Register(
	ctx context.Context,
	email, password, name string,
) (domain.User, error) {
	if _, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		return domain.User{}, ErrDuplicateRegistration
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicateRegistration
			}
			return err
		}
		if err := tx.Profiles().CreateProfile(ctx, domain.Profile{
			ID:     idx.New().String(),
			UserID: user.ID,
		}); err != nil {
			return err
		}
		return tx.Preferences().CreatePreferences(ctx, domain.Preferences{
			ID:     idx.New().String(),
			UserID: user.ID,
		})
	})
	if err != nil {
		return domain.User{}, err
	}

	return s.Store.Users().GetUserByID(ctx, user.ID)
}

// Login authenticates the credentials and issues a fresh token pair, adding
// the refresh token to the ledger. Unknown email and wrong password fail with
// the same error so responses cannot be used to enumerate accounts.
func (s *SessionService) Login(
	ctx context.Context,
	email, password string,
) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrAuthentication
		}
		return domain.TokenPair{}, err
	}

	ok, err := s.Hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if !ok {
		l.Info("password verification failed", slog.String("user_id", user.ID))
		return domain.TokenPair{}, ErrAuthentication
	}

	return s.issuePair(ctx, s.Store, user.ID, time.Now())
}

// Refresh exchanges a refresh token for a new pair, revoking the presented
// token first. A refresh token mints exactly one successor: replaying it
// after rotation fails because its ledger record is already revoked. The
// lookup and the revocation run in one transaction; the revocation itself is
// a compare-and-set, so two concurrent refreshes of the same token cannot
// both succeed.
func (s *SessionService) Refresh(
	ctx context.Context,
	refreshToken string,
) (domain.TokenPair, error) {
	claims, err := s.Codec.Verify(refreshToken, tokenx.TypeRefresh)
	if err != nil {
		return domain.TokenPair{}, ErrAuthentication
	}

	fp := cryptox.FingerprintToken(refreshToken)
	now := time.Now()

	var pair domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		rec, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrAuthentication
			}
			return err
		}
		if rec.Revoked || now.After(rec.ExpiresAt) {
			return ErrAuthentication
		}

		// Consume before issuing the successor. Losing the CAS race means
		// another request already rotated this token.
		if err := tx.RefreshTokens().ConsumeRefreshToken(ctx, fp); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrAuthentication
			}
			return err
		}

		if claims.Subject == "" {
			return ErrInvalidTokenPayload
		}

		pair, err = s.issuePair(ctx, tx, claims.Subject, now)
		return err
	})
	if err != nil {
		return domain.TokenPair{}, err
	}

	return pair, nil
}

// Authenticate resolves a bearer access token to its principal. Access
// tokens are deliberately not cross-checked against the ledger: they cannot
// be revoked before natural expiry, which bounds a stolen token's blast
// radius to the access TTL.
func (s *SessionService) Authenticate(
	ctx context.Context,
	accessToken string,
) (domain.User, error) {
	claims, err := s.Codec.Verify(accessToken, tokenx.TypeAccess)
	if err != nil {
		return domain.User{}, ErrAuthentication
	}
	if claims.Subject == "" {
		return domain.User{}, ErrAuthentication
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Principal deleted after issuance; the token is structurally
			// valid but must still be rejected.
			return domain.User{}, ErrAuthentication
		}
		return domain.User{}, err
	}

	return user, nil
}

// Logout revokes the presented refresh token. Unknown, malformed and
// already-revoked tokens succeed silently so the endpoint cannot be used for
// token scanning.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Store.RefreshTokens().RevokeRefreshToken(ctx, cryptox.FingerprintToken(refreshToken))
}

// issuePair signs a new access/refresh pair and records the refresh token in
// the ledger. st is either the root store or a transaction so rotation can
// persist atomically with the revocation.
func (s *SessionService) issuePair(
	ctx context.Context,
	st store.Store,
	userID string,
	now time.Time,
) (domain.TokenPair, error) {
	access, accessExpiry, err := s.Codec.SignAccess(userID, now)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, refreshExpiry, err := s.Codec.SignRefresh(userID, now)
	if err != nil {
		return domain.TokenPair{}, err
	}

	if err := st.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshRecord{
		ID:        idx.New().String(),
		UserID:    userID,
		TokenHash: cryptox.FingerprintToken(refresh),
		ExpiresAt: refreshExpiry,
	}); err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:   access,
		AccessExpiry:  accessExpiry,
		RefreshToken:  refresh,
		RefreshExpiry: refreshExpiry,
	}, nil
}
