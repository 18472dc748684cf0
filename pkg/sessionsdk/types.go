package sessionsdk

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Detail is a human-readable description of the failure.
	Detail string `json:"detail"`
}

// JoinRequest is the body of POST /api/v1/auth/join.
type JoinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// TokenResponse is returned from the login and refresh endpoints. The refresh
// token itself never appears in the body; it travels only in the HttpOnly
// refresh_token cookie.
type TokenResponse struct {
	// AccessToken is the JWT bearer token for API requests.
	AccessToken string `json:"access_token"`

	// Expiry is the access token's expiry as a Unix timestamp in seconds.
	Expiry int64 `json:"expiry"`

	// TokenType is always "bearer".
	TokenType string `json:"token_type"`
}

// UserResponse is the authenticated principal as returned by GET /api/v1/user/.
// The password hash is deliberately not part of the wire shape.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at"`
}

// ProfileResponse is the body of GET/PATCH /api/v1/user/profile.
type ProfileResponse struct {
	UserID    string `json:"user_id"`
	Timezone  string `json:"timezone,omitempty"`
	Locale    string `json:"locale,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

// ProfileUpdateRequest is the body of PATCH /api/v1/user/profile. Absent
// fields are left untouched.
type ProfileUpdateRequest struct {
	Timezone *string `json:"timezone,omitempty"`
	Locale   *string `json:"locale,omitempty"`
}

// PreferencesResponse is the body of GET /api/v1/user/preferences. The row is
// created empty at registration; settings columns are added by migration as
// the product grows.
type PreferencesResponse struct {
	UserID    string `json:"user_id"`
	UpdatedAt string `json:"updated_at"`
}

// HealthChecks breaks out the readiness of individual dependencies.
type HealthChecks struct {
	Database string `json:"database"`
}

// HealthResponse is returned from /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
