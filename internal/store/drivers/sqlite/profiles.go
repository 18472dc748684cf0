package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fernlabs/sessiond/internal/domain"
	"github.com/fernlabs/sessiond/internal/store"
)

type profilesRepo struct {
	db dbtx
}

func (r *profilesRepo) GetProfileByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, timezone, locale, created_at, updated_at
		 FROM user_profiles WHERE user_id = ?`, userID)
	return scanProfile(row)
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_profiles (id, user_id, timezone, locale, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, nullString(p.Timezone), nullString(p.Locale), now, now)
	return mapConstraint(err)
}

// UpdateProfile applies only the fields set on upd. The update struct keeps
// partial updates explicit instead of patching arbitrary attributes.
func (r *profilesRepo) UpdateProfile(
	ctx context.Context,
	userID string,
	upd domain.ProfileUpdate,
) (domain.Profile, error) {
	current, err := r.GetProfileByUserID(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}

	if upd.Timezone != nil {
		current.Timezone = *upd.Timezone
	}
	if upd.Locale != nil {
		current.Locale = *upd.Locale
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE user_profiles SET timezone = ?, locale = ?, updated_at = ? WHERE user_id = ?`,
		nullString(current.Timezone), nullString(current.Locale), time.Now().UTC(), userID)
	if err != nil {
		return domain.Profile{}, err
	}

	return r.GetProfileByUserID(ctx, userID)
}

type preferencesRepo struct {
	db dbtx
}

func (r *preferencesRepo) GetPreferencesByUserID(
	ctx context.Context,
	userID string,
) (domain.Preferences, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, updated_at
		 FROM user_preferences WHERE user_id = ?`, userID)

	var p domain.Preferences
	if err := row.Scan(&p.ID, &p.UserID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return domain.Preferences{}, mapNotFound(err)
	}
	return p, nil
}

func (r *preferencesRepo) CreatePreferences(ctx context.Context, p domain.Preferences) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_preferences (id, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?)`,
		p.ID, p.UserID, now, now)
	return mapConstraint(err)
}

func (r *preferencesRepo) UpdatePreferences(
	ctx context.Context,
	userID string,
) (domain.Preferences, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE user_preferences SET updated_at = ? WHERE user_id = ?`,
		time.Now().UTC(), userID)
	if err != nil {
		return domain.Preferences{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Preferences{}, store.ErrNotFound
	}

	return r.GetPreferencesByUserID(ctx, userID)
}

func scanProfile(row rowScanner) (domain.Profile, error) {
	var (
		p        domain.Profile
		timezone sql.NullString
		locale   sql.NullString
	)
	err := row.Scan(&p.ID, &p.UserID, &timezone, &locale, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	p.Timezone = timezone.String
	p.Locale = locale.String
	return p, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
