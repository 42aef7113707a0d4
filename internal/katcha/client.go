package katcha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/katchaapp/katcha/internal/signer"
	"github.com/katchaapp/katcha/pkg/config"
	"github.com/katchaapp/katcha/pkg/logging"
	"github.com/katchaapp/katcha/pkg/telemetry"
)

// CredentialSource resolves API credentials and session tokens. Absent
// values come back as empty strings, never as errors.
type CredentialSource interface {
	Credentials(ctx context.Context) (apiKey, apiSecret string, err error)
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	SetTokens(ctx context.Context, accessToken, refreshToken string) error
}

var tokenExpiredRe = regexp.MustCompile(`(?i)token expired`)

// Client talks to the backend API with HMAC request signing, in-flight
// request deduplication and transparent session refresh.
type Client struct {
	baseURL string
	creds   CredentialSource
	http    *http.Client
	logger  *zap.Logger
	now     func() time.Time

	flight  singleflight.Group // collapses identical concurrent requests
	refresh singleflight.Group // at most one token refresh at a time

	calls metric.Int64Counter
}

// New creates a Client for the configured backend
func New(cfg *config.BackendConfig, creds CredentialSource) *Client {
	calls, err := telemetry.Meter().Int64Counter("katcha.api.calls")
	if err != nil {
		calls = nil
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		creds:   creds,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logging.GetLogger().With(zap.String("component", "katcha-client")),
		now:     time.Now,
		calls:   calls,
	}
}

// Call performs an authenticated request against the backend. Identical
// concurrent calls (same method and path) share a single network request.
// A 401 or "token expired" response triggers one session refresh and one
// retry; the retried response is returned as final either way.
func (c *Client) Call(ctx context.Context, method, path string, body interface{}) (*Response, error) {
	v, err, shared := c.flight.Do(method+" "+path, func() (interface{}, error) {
		return c.call(ctx, method, path, body, true)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("request deduplicated",
			zap.String("method", method),
			zap.String("path", path))
	}
	return v.(*Response), nil
}

func (c *Client) call(ctx context.Context, method, path string, body interface{}, withAuth bool) (*Response, error) {
	ctx, span := telemetry.StartSpan(ctx, "katcha.call")
	defer span.End()

	apiKey, apiSecret, err := c.creds.Credentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	if apiKey == "" || apiSecret == "" {
		return nil, ErrMissingCredentials
	}

	token := ""
	if withAuth {
		token, err = c.creds.AccessToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load access token: %w", err)
		}
		if token == "" {
			return nil, ErrMissingCredentials
		}
	}

	resp, err := c.do(ctx, method, path, body, apiKey, apiSecret, token)
	if err != nil {
		return nil, err
	}

	if withAuth && sessionExpired(resp) {
		c.logger.Info("session expired, refreshing",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.Status))
		if err := c.RefreshSession(ctx); err != nil {
			c.logger.Warn("session refresh failed", zap.Error(err))
			return resp, nil
		}
		token, err = c.creds.AccessToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load access token: %w", err)
		}
		return c.do(ctx, method, path, body, apiKey, apiSecret, token)
	}
	return resp, nil
}

func sessionExpired(r *Response) bool {
	if r.Status == http.StatusUnauthorized {
		return true
	}
	return !r.OK() && tokenExpiredRe.MatchString(r.ErrorMessage())
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, apiKey, apiSecret, token string) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	sig := signer.Sign(method, path, strconv.FormatInt(c.now().Unix(), 10), apiSecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("x-timestamp", sig.Timestamp)
	req.Header.Set("x-signature", sig.Hex)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s %s failed: %w", method, path, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if c.calls != nil {
		c.calls.Add(ctx, 1, metric.WithAttributes(
			attribute.String("method", method),
			attribute.Int("status", httpResp.StatusCode)))
	}
	c.logger.Debug("backend call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", httpResp.StatusCode),
		zap.Bool("authenticated", token != ""),
		zap.Duration("duration", time.Since(start)))

	return newResponse(httpResp.StatusCode, raw), nil
}

// EnsureSession refreshes the session only when no access token is stored
func (c *Client) EnsureSession(ctx context.Context) error {
	token, err := c.creds.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to load access token: %w", err)
	}
	if token != "" {
		return nil
	}
	return c.RefreshSession(ctx)
}

// RefreshSession exchanges the stored refresh token for a new token pair.
// Concurrent callers share a single refresh request.
func (c *Client) RefreshSession(ctx context.Context) error {
	_, err, _ := c.refresh.Do("refresh", func() (interface{}, error) {
		return nil, c.refreshSession(ctx)
	})
	return err
}

func (c *Client) refreshSession(ctx context.Context) error {
	refreshToken, err := c.creds.RefreshToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to load refresh token: %w", err)
	}
	if refreshToken == "" {
		return ErrNoRefreshToken
	}

	resp, err := c.call(ctx, http.MethodPost, "/api/auth", authRequest{
		Action:       actionRefreshToken,
		RefreshToken: refreshToken,
	}, false)
	if err != nil {
		return fmt.Errorf("refresh request failed: %w", err)
	}
	if err := resp.Err(); err != nil {
		return fmt.Errorf("refresh rejected: %w", err)
	}

	var ar authResponse
	if err := resp.Decode(&ar); err != nil {
		return err
	}
	access, refresh := ar.pair()
	if access == "" {
		return fmt.Errorf("katcha: refresh response carried no access token")
	}
	if refresh == "" {
		refresh = refreshToken
	}
	if err := c.creds.SetTokens(ctx, access, refresh); err != nil {
		return fmt.Errorf("failed to persist tokens: %w", err)
	}
	c.logger.Info("session refreshed")
	return nil
}
