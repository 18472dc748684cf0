package store

import (
	"context"
	"errors"

	"github.com/fernlabs/sessiond/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	Profiles() Profiles
	Preferences() Preferences

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., refresh rotation).
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and duplicate-registration checks.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// DeleteUser cascades to refresh_tokens, profiles and preferences (per schema).
	DeleteUser(ctx context.Context, userID string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

// RefreshTokens is the refresh ledger: one row per issued refresh token,
// keyed by token fingerprint, revoked-in-place and never hard-deleted by the
// session flow.
type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshRecord) error

	// GetRefreshTokenByHash returns the record by its fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshRecord, error)

	// RevokeRefreshToken flips revoked to true and bumps updated_at.
	// Revoking an already-revoked or unknown token is a no-op, not an error.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// ConsumeRefreshToken is the compare-and-set used by rotation: it flips
	// revoked from false to true and returns ErrNotFound if no live record
	// matched, so concurrent rotations of the same token cannot both win.
	ConsumeRefreshToken(ctx context.Context, hash string) error

	// DeleteExpiredRefreshTokens is housekeeping only; correctness never
	// depends on it, expired records are rejected at lookup time.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

type Profiles interface {
	// GetProfileByUserID returns the profile for a user.
	GetProfileByUserID(ctx context.Context, userID string) (domain.Profile, error)

	// CreateProfile inserts the empty profile row made at registration.
	CreateProfile(ctx context.Context, p domain.Profile) error

	// UpdateProfile applies the non-nil fields and bumps updated_at.
	UpdateProfile(ctx context.Context, userID string, upd domain.ProfileUpdate) (domain.Profile, error)
}

type Preferences interface {
	// GetPreferencesByUserID returns the preferences for a user.
	GetPreferencesByUserID(ctx context.Context, userID string) (domain.Preferences, error)

	// CreatePreferences inserts the empty preferences row made at registration.
	CreatePreferences(ctx context.Context, p domain.Preferences) error

	// UpdatePreferences applies an update and bumps updated_at. There are no
	// settings columns yet; they arrive by migration as the product grows.
	UpdatePreferences(ctx context.Context, userID string) (domain.Preferences, error)
}
