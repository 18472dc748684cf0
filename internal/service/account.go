package service

import (
	"context"

	"github.com/fernlabs/sessiond/internal/domain"
	"github.com/fernlabs/sessiond/internal/store"
)

// AccountService serves the per-user profile and preferences resources.
type AccountService struct {
	Store store.Store
}

// GetProfile fetches the profile for a user.
func (s *AccountService) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	return s.Store.Profiles().GetProfileByUserID(ctx, userID)
}

// UpdateProfile applies a partial profile update; nil fields are untouched.
func (s *AccountService) UpdateProfile(
	ctx context.Context,
	userID string,
	upd domain.ProfileUpdate,
) (domain.Profile, error) {
	return s.Store.Profiles().UpdateProfile(ctx, userID, upd)
}

// GetPreferences fetches the preferences for a user.
func (s *AccountService) GetPreferences(ctx context.Context, userID string) (domain.Preferences, error) {
	return s.Store.Preferences().GetPreferencesByUserID(ctx, userID)
}

// UpdatePreferences applies a preferences update. The schema has no settings
// columns yet, so today this only bumps updated_at; the endpoint contract is
// in place for when columns land.
func (s *AccountService) UpdatePreferences(ctx context.Context, userID string) (domain.Preferences, error) {
	return s.Store.Preferences().UpdatePreferences(ctx, userID)
}

// DeleteAccount removes the user. Profile, preferences and refresh token rows
// go with it via ON DELETE CASCADE, so outstanding refresh tokens die with
// the account; outstanding access tokens fail at the next principal lookup.
func (s *AccountService) DeleteAccount(ctx context.Context, userID string) error {
	return s.Store.Users().DeleteUser(ctx, userID)
}
