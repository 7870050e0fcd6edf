package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/molinosatl/invdash/internal/models"
)

// Login authenticates against POST /login and persists the resulting
// session. This is the one endpoint with a different wire format: the
// backend expects a password-grant style form-urlencoded body, not JSON,
// so the request is built here instead of going through do. Failures
// surface the backend's detail message when present.
func (c *Client) Login(ctx context.Context, username, password string) (*models.UserProfile, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body struct {
			Detail string `json:"detail"`
		}
		msg := msgInvalidCredentials
		if err := json.Unmarshal(raw, &body); err == nil && strings.TrimSpace(body.Detail) != "" {
			msg = strings.TrimSpace(body.Detail)
		}
		return nil, &Error{Kind: KindAuth, Message: msg, Status: resp.StatusCode}
	}

	var login models.LoginResponse
	if err := json.Unmarshal(raw, &login); err != nil || login.AccessToken == "" {
		return nil, &Error{Kind: KindServer, Message: msgServerError, Status: resp.StatusCode}
	}

	profile := login.User
	if profile == nil {
		profile = &models.UserProfile{Username: username}
	}
	if err := c.session.Set(login.AccessToken, profile); err != nil {
		return nil, err
	}

	// Older backends omit the profile from the login response; fetch it
	// so IsAdmin gating works. Best effort: the session stays valid
	// with the minimal profile if this fails.
	if login.User == nil {
		if me, err := c.Me(ctx); err == nil {
			profile = me
			_ = c.session.Set(login.AccessToken, me)
		}
	}
	return profile, nil
}

// Me fetches the profile of the logged-in user.
func (c *Client) Me(ctx context.Context) (*models.UserProfile, error) {
	var u models.UserProfile
	if err := c.doJSON(ctx, http.MethodGet, "/users/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
