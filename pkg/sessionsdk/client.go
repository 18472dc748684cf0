package sessionsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Client talks to a sessiond instance. The refresh token lives in an HttpOnly
// cookie, so the client carries a cookie jar the way a browser would; only the
// access token is held in memory.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	accessToken string
}

// NewClient creates a client with a fresh cookie jar.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}, nil
}

// AccessToken returns the access token from the most recent login or refresh.
func (c *Client) AccessToken() string {
	return c.accessToken
}

// Join registers a new account.
func (c *Client) Join(ctx context.Context, email, password, name string) (UserResponse, error) {
	var out UserResponse
	body, err := json.Marshal(JoinRequest{Email: email, Password: password, Name: name})
	if err != nil {
		return out, err
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/v1/auth/join", bytes.NewReader(body), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return out, err
	}
	return out, decodeJSON(resp, &out, http.StatusCreated)
}

// Login authenticates with email and password. On success the refresh token
// cookie is captured by the jar and the access token is retained for
// subsequent authenticated calls.
func (c *Client) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	var out TokenResponse
	form := url.Values{
		"username": {email},
		"password": {password},
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	})
	if err != nil {
		return out, err
	}
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return out, err
	}

	c.accessToken = out.AccessToken
	return out, nil
}

// Refresh rotates the session using the refresh token cookie in the jar.
func (c *Client) Refresh(ctx context.Context) (TokenResponse, error) {
	var out TokenResponse
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", nil, nil)
	if err != nil {
		return out, err
	}
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return out, err
	}

	c.accessToken = out.AccessToken
	return out, nil
}

// Logout revokes the refresh token and clears the local access token.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
	if err != nil {
		return err
	}
	c.accessToken = ""
	return checkStatusNoContent(resp)
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (UserResponse, error) {
	var out UserResponse
	resp, err := c.doAuth(ctx, http.MethodGet, "/api/v1/user/", nil, nil)
	if err != nil {
		return out, err
	}
	return out, decodeJSON(resp, &out, http.StatusOK)
}

// DeleteAccount removes the authenticated user's account and clears the
// local access token.
func (c *Client) DeleteAccount(ctx context.Context) error {
	resp, err := c.doAuth(ctx, http.MethodDelete, "/api/v1/user/", nil, nil)
	if err != nil {
		return err
	}
	if err := checkStatusNoContent(resp); err != nil {
		return err
	}
	c.accessToken = ""
	return nil
}

// Profile returns the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (ProfileResponse, error) {
	var out ProfileResponse
	resp, err := c.doAuth(ctx, http.MethodGet, "/api/v1/user/profile", nil, nil)
	if err != nil {
		return out, err
	}
	return out, decodeJSON(resp, &out, http.StatusOK)
}

// UpdateProfile applies a partial profile update.
func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdateRequest) (ProfileResponse, error) {
	var out ProfileResponse
	body, err := json.Marshal(upd)
	if err != nil {
		return out, err
	}

	resp, err := c.doAuth(ctx, http.MethodPatch, "/api/v1/user/profile", bytes.NewReader(body), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return out, err
	}
	return out, decodeJSON(resp, &out, http.StatusOK)
}

// Preferences returns the authenticated user's preferences.
func (c *Client) Preferences(ctx context.Context) (PreferencesResponse, error) {
	var out PreferencesResponse
	resp, err := c.doAuth(ctx, http.MethodGet, "/api/v1/user/preferences", nil, nil)
	if err != nil {
		return out, err
	}
	return out, decodeJSON(resp, &out, http.StatusOK)
}

// UpdatePreferences applies a preferences update (currently an empty body;
// settings fields arrive with future server versions).
func (c *Client) UpdatePreferences(ctx context.Context) (PreferencesResponse, error) {
	var out PreferencesResponse
	resp, err := c.doAuth(ctx, http.MethodPatch, "/api/v1/user/preferences", strings.NewReader("{}"), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return out, err
	}
	return out, decodeJSON(resp, &out, http.StatusOK)
}

// Livez probes the liveness endpoint.
func (c *Client) Livez(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	resp, err := c.do(ctx, http.MethodGet, "/livez", nil, nil)
	if err != nil {
		return out, err
	}
	return out, decodeJSON(resp, &out, http.StatusOK)
}

// Readyz probes the readiness endpoint.
func (c *Client) Readyz(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	resp, err := c.do(ctx, http.MethodGet, "/readyz", nil, nil)
	if err != nil {
		return out, err
	}
	return out, decodeJSON(resp, &out, http.StatusOK)
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

func (c *Client) do(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}

func (c *Client) doAuth(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	if headers == nil {
		headers = map[string]string{}
	}
	headers["Authorization"] = "Bearer " + c.accessToken
	return c.do(ctx, method, path, body, headers)
}

func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}
	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func checkStatusNoContent(resp *http.Response) error {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp, bodyBytes)
	}
	return nil
}
