// Package sac implements the session client for the SAP Analytics Cloud
// REST API: OAuth2 client-credentials token acquisition with expiry-based
// caching, the x-csrf-token handshake SAC requires for mutating calls, and
// request execution with a one-shot retry when SAC rejects a stale CSRF
// token.
package sac

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/saclabs/sac-relay/internal/config"
	"github.com/saclabs/sac-relay/internal/errors"
)

const (
	// SAC occasionally expires tokens slightly before the advertised
	// expires_in; treat a token as stale five minutes early.
	tokenExpiryMargin = 300 * time.Second

	// Fallback when the token endpoint omits expires_in.
	defaultExpiresIn = 3600

	csrfEndpoint   = "/api/v1/csrf"
	csrfFetchValue = "fetch"

	headerCSRFToken  = "x-csrf-token"
	headerCustomAuth = "x-sap-sac-custom-auth"
)

// Client is a session client bound to a single SAC tenant. One long-lived
// Client is shared across relay calls; the token and CSRF caches are guarded
// by an RWMutex and concurrent cold-start token fetches collapse into a
// single upstream round-trip.
type Client struct {
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string

	httpClient *http.Client

	mu          sync.RWMutex
	accessToken string
	tokenExpiry time.Time
	csrfToken   string

	tokenGroup singleflight.Group

	now func() time.Time
}

// Option customises a Client. Used by tests to inject a clock or a stub
// HTTP client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for all upstream calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithClock replaces the time source used for token expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New builds a session client from the SAC connection settings. Every
// credential field is required; construction fails with ErrMissingConfig
// naming the first absent one.
func New(cfg config.SACConfig, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:      strings.TrimRight(cfg.GetSACBaseURL(), "/"),
		tokenURL:     cfg.GetSACTokenURL(),
		clientID:     cfg.GetSACClientID(),
		clientSecret: cfg.GetSACClientSecret(),
		httpClient:   &http.Client{Timeout: cfg.GetSACTimeout()},
		now:          time.Now,
	}

	required := []struct {
		name  string
		value string
	}{
		{"SAC_BASE_URL", c.baseURL},
		{"SAC_TOKEN_URL", c.tokenURL},
		{"SAC_CLIENT_ID", c.clientID},
		{"SAC_CLIENT_SECRET", c.clientSecret},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, fmt.Errorf("%w: %s is not set", errors.ErrMissingConfig, r.name)
		}
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the upstream base URL the client was constructed with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Authenticate returns a valid bearer token, reusing the cached one while
// it has not passed its early-expiry deadline. Concurrent callers needing a
// refresh share one token-endpoint request.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	c.mu.RLock()
	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		token := c.accessToken
		c.mu.RUnlock()
		return token, nil
	}
	c.mu.RUnlock()

	token, err, _ := c.tokenGroup.Do("access-token", func() (interface{}, error) {
		return c.refreshAccessToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *Client) refreshAccessToken(ctx context.Context) (string, error) {
	// Another caller may have refreshed between the cache miss and the
	// singleflight entry.
	c.mu.RLock()
	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		token := c.accessToken
		c.mu.RUnlock()
		return token, nil
	}
	c.mu.RUnlock()

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrapf(err, "building token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.ClassifyTransport(err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", errors.Wrapf(err, "reading token response")
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", fmt.Errorf("%w: token endpoint returned %d: %s",
			errors.ErrTokenRequest, res.StatusCode, truncate(body, 256))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("%w: decoding token response: %v", errors.ErrTokenRequest, err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: token response has no access_token", errors.ErrTokenRequest)
	}

	expiresIn := tr.ExpiresIn
	if expiresIn == 0 {
		expiresIn = defaultExpiresIn
	}
	issuedAt := c.now()
	expiry := issuedAt.Add(time.Duration(expiresIn)*time.Second - tokenExpiryMargin)

	c.mu.Lock()
	c.accessToken = tr.AccessToken
	c.tokenExpiry = expiry
	c.mu.Unlock()

	log.Debug().
		Time("expiry", expiry).
		Int64("expires_in", expiresIn).
		Msg("SAC access token refreshed")

	return tr.AccessToken, nil
}

// CachedToken reports the currently cached bearer token, its early-expiry
// deadline, and whether a CSRF token is held. The token itself must never
// be written to a relay response; it is exposed for the session diagnostics
// handler to decode locally.
func (c *Client) CachedToken() (token string, expiry time.Time, csrfCached bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken, c.tokenExpiry, c.csrfToken != ""
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
