package katcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

const (
	actionGoogleLogin   = "google_login"
	actionAppleLogin    = "apple_login"
	actionRefreshToken  = "refresh_token"
	actionDeleteAccount = "delete_account"
)

type authRequest struct {
	Action       string `json:"action"`
	RefreshToken string `json:"refresh_token,omitempty"`

	GoogleID   string `json:"google_id,omitempty"`
	AppleID    string `json:"apple_id,omitempty"`
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
	DeviceID   string `json:"device_id,omitempty"`
	FirebaseID string `json:"firebase_id,omitempty"`
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type authResponse struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	User    json.RawMessage `json:"user"`
	Tokens  *tokenPair      `json:"tokens"`
	tokenPair
}

// pair returns the new tokens, whether the backend nested them under
// "tokens" or put them at the top level
func (a *authResponse) pair() (access, refresh string) {
	if a.Tokens != nil && a.Tokens.AccessToken != "" {
		return a.Tokens.AccessToken, a.Tokens.RefreshToken
	}
	return a.AccessToken, a.RefreshToken
}

// Session is the result of a successful login
type Session struct {
	User json.RawMessage
}

// GoogleLoginPayload identifies a Google account to sign in with
type GoogleLoginPayload struct {
	GoogleID   string
	Email      string
	Name       string
	DeviceID   string
	FirebaseID string
}

// AppleLoginPayload identifies an Apple account to sign in with
type AppleLoginPayload struct {
	AppleID    string
	Email      string
	Name       string
	DeviceID   string
	FirebaseID string
}

// GoogleLogin signs in with a Google identity and stores the issued tokens
func (c *Client) GoogleLogin(ctx context.Context, p GoogleLoginPayload) (*Session, error) {
	return c.login(ctx, authRequest{
		Action:     actionGoogleLogin,
		GoogleID:   p.GoogleID,
		Email:      p.Email,
		Name:       p.Name,
		DeviceID:   p.DeviceID,
		FirebaseID: p.FirebaseID,
	})
}

// AppleLogin signs in with an Apple identity and stores the issued tokens
func (c *Client) AppleLogin(ctx context.Context, p AppleLoginPayload) (*Session, error) {
	return c.login(ctx, authRequest{
		Action:     actionAppleLogin,
		AppleID:    p.AppleID,
		Email:      p.Email,
		Name:       p.Name,
		DeviceID:   p.DeviceID,
		FirebaseID: p.FirebaseID,
	})
}

func (c *Client) login(ctx context.Context, req authRequest) (*Session, error) {
	resp, err := c.call(ctx, http.MethodPost, "/api/auth", req, false)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var ar authResponse
	if err := resp.Decode(&ar); err != nil {
		return nil, err
	}
	access, refresh := ar.pair()
	if access == "" {
		return nil, fmt.Errorf("katcha: login response carried no access token")
	}
	if err := c.creds.SetTokens(ctx, access, refresh); err != nil {
		return nil, fmt.Errorf("failed to persist tokens: %w", err)
	}
	c.logger.Info("logged in", zap.String("action", req.Action))
	return &Session{User: ar.User}, nil
}

// DeleteAccount removes the account on the backend. The caller is expected
// to clear the local session afterwards.
func (c *Client) DeleteAccount(ctx context.Context) error {
	resp, err := c.Call(ctx, http.MethodPost, "/api/auth", authRequest{Action: actionDeleteAccount})
	if err != nil {
		return fmt.Errorf("delete account failed: %w", err)
	}
	return resp.Err()
}
