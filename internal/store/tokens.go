package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/katchaapp/katcha/internal/models"
)

// TokenStore resolves API credentials and the session token pair. The API
// key/secret come from configuration; tokens live in the state store so
// they survive restarts. Tokens and credentials are opaque strings.
type TokenStore struct {
	state     StateStore
	apiKey    string
	apiSecret string
}

// NewTokenStore creates a token store over the given state store
func NewTokenStore(state StateStore, apiKey, apiSecret string) *TokenStore {
	return &TokenStore{
		state:     state,
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}

// Credentials returns the configured API key and secret. Absent credentials
// come back as empty strings; the client decides how to fail.
func (s *TokenStore) Credentials(ctx context.Context) (string, string, error) {
	return s.apiKey, s.apiSecret, nil
}

// AccessToken returns the stored access token, or "" when logged out
func (s *TokenStore) AccessToken(ctx context.Context) (string, error) {
	return s.state.Get(ctx, models.StateKeyAccessToken)
}

// RefreshToken returns the stored refresh token, or ""
func (s *TokenStore) RefreshToken(ctx context.Context) (string, error) {
	return s.state.Get(ctx, models.StateKeyRefreshToken)
}

// SetTokens persists a token pair. An empty refresh token leaves the
// previous one in place.
func (s *TokenStore) SetTokens(ctx context.Context, accessToken, refreshToken string) error {
	if err := s.state.Set(ctx, models.StateKeyAccessToken, accessToken); err != nil {
		return err
	}
	if refreshToken != "" {
		return s.state.Set(ctx, models.StateKeyRefreshToken, refreshToken)
	}
	return nil
}

// ClearTokens removes both tokens (logout)
func (s *TokenStore) ClearTokens(ctx context.Context) error {
	if err := s.state.Remove(ctx, models.StateKeyAccessToken); err != nil {
		return err
	}
	return s.state.Remove(ctx, models.StateKeyRefreshToken)
}

// DeviceID returns the persisted device id, generating one on first use
func (s *TokenStore) DeviceID(ctx context.Context) (string, error) {
	id, err := s.state.Get(ctx, models.StateKeyDeviceID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if err := s.state.Set(ctx, models.StateKeyDeviceID, id); err != nil {
		return "", err
	}
	return id, nil
}
