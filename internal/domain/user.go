package domain

import "time"

// User is an authenticatable principal. Accounts are created on registration
// and looked up by email (login) or id (bearer authentication).
type User struct {
	ID           string
	Email        string
	PasswordHash string // argon2id encoded
	Name         string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the per-user profile row created empty at registration.
type Profile struct {
	ID        string
	UserID    string
	Timezone  string
	Locale    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileUpdate carries a partial profile update. Nil fields are left
// untouched.
type ProfileUpdate struct {
	Timezone *string
	Locale   *string
}

// Preferences holds the per-user preferences row created empty at
// registration.
type Preferences struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
