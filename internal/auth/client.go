// Package auth owns the upstream authentication lifecycle: the REST
// client for the auth endpoints and the session state machine that
// drives auto-login, retry and expiry handling.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrSessionExpired signals a 401 on an authenticated call. The
	// session reacts by clearing the token and re-arming auto-login.
	ErrSessionExpired = errors.New("session expired")
	// ErrNotAuthenticated is returned when an authenticated request is
	// attempted without a live session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrAuthUnavailable marks the terminal state after auto-login has
	// exhausted its retry budget.
	ErrAuthUnavailable = errors.New("authentication unavailable")
)

// LoginResult is the upstream response to POST /auth/login.
type LoginResult struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

type verifyResult struct {
	Success bool `json:"success"`
}

// Client talks to the upstream job API. Requests carry the session
// cookie (the http client keeps a jar) and, when a token is held, a
// bearer header on top.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(baseURL string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 15 * time.Second,
			Jar:     jar,
		},
		log: log,
	}
}

// Login issues the unattended login call. A non-2xx status or a
// success=false body both count as a failed attempt.
func (c *Client) Login(ctx context.Context) (LoginResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", nil)
	if err != nil {
		return LoginResult{}, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return LoginResult{}, fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	var result LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return LoginResult{}, fmt.Errorf("decode login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !result.Success {
		msg := result.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return result, fmt.Errorf("login rejected: %s", msg)
	}
	return result, nil
}

// Verify checks whether a persisted token still identifies a live
// session. Transport failures are reported as a plain "not valid" so the
// caller falls through to the login path.
func (c *Client) Verify(ctx context.Context, token string) bool {
	raw, err := c.get(ctx, "/auth/verify", token)
	if err != nil {
		c.log.Debug("token verify failed", zap.Error(err))
		return false
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return false
	}
	var result verifyResult
	if err := json.Unmarshal(data, &result); err != nil {
		return false
	}
	return result.Success
}

// Logout tells the upstream to drop the session. Best effort.
func (c *Client) Logout(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/logout", nil)
	if err != nil {
		return fmt.Errorf("build logout request: %w", err)
	}
	authorize(req, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("logout request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}

// FetchJobs retrieves the raw job payload. The shape varies per upstream
// deployment, so the body is decoded into a generic value and handed to
// the normalizer untouched.
func (c *Client) FetchJobs(ctx context.Context, token string) (any, error) {
	return c.get(ctx, "/jobs", token)
}

// Get performs an authenticated GET against an arbitrary upstream
// resource. A 401 maps to ErrSessionExpired.
func (c *Client) Get(ctx context.Context, resource, token string) (any, error) {
	return c.get(ctx, resource, token)
}

func (c *Client) get(ctx context.Context, resource, token string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+resource, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", resource, err)
	}
	authorize(req, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("request %s: upstream status %d", resource, resp.StatusCode)
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", resource, err)
	}
	return payload, nil
}

func authorize(req *http.Request, token string) {
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
