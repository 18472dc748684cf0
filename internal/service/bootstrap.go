package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fernlabs/sessiond/internal/domain"
	"github.com/fernlabs/sessiond/internal/store"
	"github.com/fernlabs/sessiond/pkg/cryptox"
	"github.com/fernlabs/sessiond/pkg/idx"
)

// BootstrapService seeds the initial admin account when the service starts
// with an empty users table and admin credentials are configured.
type BootstrapService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
	Logger *slog.Logger
}

// EnsureAdmin creates the admin principal if, and only if, no users exist
// yet. Re-running against a populated database is a no-op.
func (s *BootstrapService) EnsureAdmin(ctx context.Context, email, password, name string) error {
	if email == "" || password == "" {
		return nil
	}

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return err
	}

	admin := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		IsAdmin:      true,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, admin); err != nil {
			return err
		}
		if err := tx.Profiles().CreateProfile(ctx, domain.Profile{
			ID:     idx.New().String(),
			UserID: admin.ID,
		}); err != nil {
			return err
		}
		return tx.Preferences().CreatePreferences(ctx, domain.Preferences{
			ID:     idx.New().String(),
			UserID: admin.ID,
		})
	})
	if err != nil {
		// A concurrent boot may have seeded first; that's fine.
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil
		}
		return err
	}

	s.Logger.Info("bootstrap admin created", slog.String("email", email))
	return nil
}
