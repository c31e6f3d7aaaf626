package sac

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/saclabs/sac-relay/internal/errors"
)

// FetchCSRFToken performs the SAC CSRF handshake: a GET against the CSRF
// endpoint with "x-csrf-token: fetch", expecting the fresh token echoed in
// the response header. The result replaces the cached token. SAC tracks no
// expiry for these; the cached value is assumed valid until the upstream
// rejects it.
func (c *Client) FetchCSRFToken(ctx context.Context) (string, error) {
	bearer, err := c.Authenticate(ctx)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+csrfEndpoint, nil)
	if err != nil {
		return "", errors.Wrapf(err, "building csrf request")
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set(headerCSRFToken, csrfFetchValue)
	req.Header.Set(headerCustomAuth, "true")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.ClassifyTransport(err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", fmt.Errorf("%w: csrf endpoint returned %d", errors.ErrCSRFFetch, res.StatusCode)
	}

	token := res.Header.Get(headerCSRFToken)
	if token == "" {
		// An empty token could never satisfy the upstream, so a missing
		// header is a handshake failure rather than a cacheable result.
		return "", fmt.Errorf("%w: upstream did not return a %s header", errors.ErrCSRFFetch, headerCSRFToken)
	}

	c.mu.Lock()
	c.csrfToken = token
	c.mu.Unlock()

	log.Debug().Msg("SAC csrf token refreshed")
	return token, nil
}

// cachedOrFetchCSRFToken returns the cached CSRF token, performing the
// handshake only when none is held.
func (c *Client) cachedOrFetchCSRFToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	token := c.csrfToken
	c.mu.RUnlock()
	if token != "" {
		return token, nil
	}
	return c.FetchCSRFToken(ctx)
}

func (c *Client) invalidateCSRFToken() {
	c.mu.Lock()
	c.csrfToken = ""
	c.mu.Unlock()
}
