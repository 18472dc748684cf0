package session_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/fernlabs/sessiond/pkg/sessionsdk"
	"github.com/stretchr/testify/require"
)

func TestRegistrationLifecycle(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := newClient(t, baseURL)
	ctx := context.Background()

	user, err := client.Join(ctx, "a@x.com", "pw123", "Alice")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "a@x.com", user.Email)

	// Same email again is rejected.
	_, err = client.Join(ctx, "a@x.com", "other", "Imposter")
	apiErr, ok := err.(*sessionsdk.APIError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "Email already registered", apiErr.Detail)
}

func TestLoginAndRefreshRotation(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := newClient(t, baseURL)
	ctx := context.Background()

	_, err := client.Join(ctx, "a@x.com", "pw123", "Alice")
	require.NoError(t, err)

	token, err := client.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)
	require.NotEmpty(t, token.AccessToken)
	require.Equal(t, "bearer", token.TokenType)
	require.Greater(t, token.Expiry, time.Now().Unix())

	// Capture the pre-rotation refresh cookie so it can be replayed.
	probe, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/auth/refresh", nil)
	require.NoError(t, err)
	oldCookies := client.HTTPClient.Jar.Cookies(probe.URL)
	require.NotEmpty(t, oldCookies)

	rotated, err := client.Refresh(ctx)
	require.NoError(t, err)
	require.NotEqual(t, token.AccessToken, rotated.AccessToken)

	// Replaying the consumed refresh token fails.
	replay, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/auth/refresh", nil)
	require.NoError(t, err)
	for _, c := range oldCookies {
		replay.AddCookie(c)
	}
	resp, err := http.DefaultClient.Do(replay)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The rotated session keeps working.
	me, err := client.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", me.Email)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := newClient(t, baseURL)
	ctx := context.Background()

	_, err := client.Join(ctx, "a@x.com", "pw123", "Alice")
	require.NoError(t, err)

	_, wrongPassword := client.Login(ctx, "a@x.com", "nope")
	_, unknownUser := client.Login(ctx, "ghost@x.com", "pw123")

	for _, err := range []error{wrongPassword, unknownUser} {
		apiErr, ok := err.(*sessionsdk.APIError)
		require.True(t, ok)
		require.Equal(t, http.StatusUnauthorized, apiErr.Status)
		require.Equal(t, "Incorrect username or password", apiErr.Detail)
	}
}

func TestRefreshWithoutCookie(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	resp, err := http.Post(baseURL+"/api/v1/auth/refresh", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutEndsSession(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := newClient(t, baseURL)
	ctx := context.Background()

	_, err := client.Join(ctx, "a@x.com", "pw123", "Alice")
	require.NoError(t, err)
	_, err = client.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)

	require.NoError(t, client.Logout(ctx))

	_, err = client.Refresh(ctx)
	require.True(t, sessionsdk.IsUnauthorized(err), "refresh after logout: %v", err)

	// A second logout is still a 204.
	require.NoError(t, client.Logout(ctx))
}

func TestDeletedPrincipalIsRejected(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := newClient(t, baseURL)
	ctx := context.Background()

	_, err := client.Join(ctx, "a@x.com", "pw123", "Alice")
	require.NoError(t, err)
	_, err = client.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)

	accessToken := client.AccessToken()
	require.NoError(t, client.DeleteAccount(ctx))

	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/v1/user/", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminBootstrap(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := newClient(t, baseURL)
	ctx := context.Background()

	// The seeded admin from the container environment can log in.
	_, err := client.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	me, err := client.Me(ctx)
	require.NoError(t, err)
	require.True(t, me.IsAdmin)
}

func TestProfileAndPreferences(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := newClient(t, baseURL)
	ctx := context.Background()

	_, err := client.Join(ctx, "a@x.com", "pw123", "Alice")
	require.NoError(t, err)
	_, err = client.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)

	tz := "Australia/Sydney"
	profile, err := client.UpdateProfile(ctx, sessionsdk.ProfileUpdateRequest{Timezone: &tz})
	require.NoError(t, err)
	require.Equal(t, tz, profile.Timezone)

	prefs, err := client.Preferences(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, prefs.UserID)
}

func TestLoginRateLimit(t *testing.T) {
	baseURL, cleanup := setupContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := newClient(t, baseURL)
	ctx := context.Background()

	_, err := client.Join(ctx, "a@x.com", "pw123", "Alice")
	require.NoError(t, err)

	// Hammer the login endpoint with bad credentials until the limiter
	// answers 429 instead of 401.
	var limited bool
	for i := 0; i < 10; i++ {
		_, err := client.Login(ctx, "a@x.com", "wrong")
		apiErr, ok := err.(*sessionsdk.APIError)
		require.True(t, ok)
		if apiErr.Status == http.StatusTooManyRequests {
			limited = true
			break
		}
		require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	}
	require.True(t, limited, "expected the strict limit to kick in")
}
