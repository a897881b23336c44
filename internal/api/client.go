package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/folioworks/folio/internal/model"
	"github.com/folioworks/folio/internal/session"
	"github.com/google/uuid"
)

var (
	// ErrUnreachable means the server could not be contacted at all.
	ErrUnreachable = errors.New("content API unreachable")
	// ErrUnauthorized means the server rejected the bearer token.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a non-auth failure reported by the server, carrying the
// envelope message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

// Client talks to the content API. Every response is a
// {data, success, message} envelope; Data is decoded per call site.
// The client reads the bearer token from the credential store on each
// request and never stores tokens itself.
type Client struct {
	baseURL     string
	creds       *session.CredentialStore
	httpClient  *http.Client
	fallbackDir string
}

// NewClient creates a client for the given base URL. fallbackDir may be
// "" to disable the static JSON fallback.
func NewClient(baseURL string, creds *session.CredentialStore, fallbackDir string) *Client {
	return &Client{
		baseURL:     baseURL,
		creds:       creds,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		fallbackDir: fallbackDir,
	}
}

// do sends a request and returns the decoded envelope. A transport-level
// failure maps to ErrUnreachable, a 401 to ErrUnauthorized, any other
// non-2xx to *APIError.
func (c *Client) do(ctx context.Context, method, path string, body any) (*model.Envelope, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	// Correlates client and server log lines; the server's RequestID
	// middleware keeps a provided ID instead of minting one.
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	var env model.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
	case !env.Success:
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	return &env, nil
}

// Login exchanges credentials for tokens and the user record.
func (c *Client) Login(ctx context.Context, email, password string) (*model.LoginResult, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var result model.LoginResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode login result: %w", err)
	}
	return &result, nil
}

// Logout invalidates the server-side session. Best-effort for callers:
// the orchestrator clears local state regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil)
	return err
}

// Me fetches the current user for the presented token.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

// ChangePassword changes the current user's password.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	_, err := c.do(ctx, http.MethodPut, "/api/v1/auth/change-password", map[string]string{
		"old_password": oldPassword,
		"new_password": newPassword,
	})
	return err
}

// Refresh mints a new access token from the stored refresh token.
func (c *Client) Refresh(ctx context.Context) (*model.RefreshResult, error) {
	refresh := c.creds.RefreshToken()
	if refresh == "" {
		return nil, ErrUnauthorized
	}

	env, err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", map[string]string{
		"refresh_token": refresh,
	})
	if err != nil {
		return nil, err
	}

	var result model.RefreshResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode refresh result: %w", err)
	}
	return &result, nil
}
