package sac

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/saclabs/sac-relay/internal/errors"
)

// RawResponse is an upstream HTTP response as the session client saw it.
// Non-2xx statuses are results, not errors; the relay forwards them
// verbatim.
type RawResponse struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// ContentType returns the upstream's declared media type without parameters.
func (r *RawResponse) ContentType() string {
	ct := r.Header.Get("Content-Type")
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = ct[:idx]
	}
	return strings.TrimSpace(ct)
}

var mutatingMethods = map[string]struct{}{
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// Execute issues a single authenticated call against the SAC REST API.
// The bearer token is always attached; mutating methods additionally carry
// the CSRF token (cached, or fetched on first use).
//
// SAC can answer a mutating call with 403 and a CSRF complaint in the body
// immediately after a seemingly valid handshake; a second handshake
// reliably clears it. When that happens the cached CSRF token is dropped, a
// fresh one is fetched, and the identical request is reissued exactly once.
// The second attempt's result is returned as-is, whatever it is. No other
// 403 triggers a retry.
func (c *Client) Execute(ctx context.Context, method, endpoint string, payload []byte) (*RawResponse, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	requestURL := c.baseURL + normalizeEndpoint(endpoint)

	bearer, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	csrf := ""
	if _, mutating := mutatingMethods[method]; mutating {
		csrf, err = c.cachedOrFetchCSRFToken(ctx)
		if err != nil {
			return nil, err
		}
	}

	res, err := c.attempt(ctx, method, requestURL, bearer, csrf, payload)
	if err != nil {
		return nil, err
	}
	if !csrfRejected(res) {
		return res, nil
	}

	log.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Msg("upstream rejected csrf token, refetching and retrying once")

	c.invalidateCSRFToken()
	csrf, err = c.FetchCSRFToken(ctx)
	if err != nil {
		return nil, err
	}
	return c.attempt(ctx, method, requestURL, bearer, csrf, payload)
}

func (c *Client) attempt(ctx context.Context, method, requestURL, bearer, csrf string, payload []byte) (*RawResponse, error) {
	var body io.Reader
	if len(payload) > 0 {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrBadRequest, "building upstream request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set(headerCustomAuth, "true")
	req.Header.Set("Content-Type", "application/json")
	if csrf != "" {
		req.Header.Set(headerCSRFToken, csrf)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.ClassifyTransport(err)
	}
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.ClassifyTransport(err)
	}

	return &RawResponse{
		StatusCode: res.StatusCode,
		Body:       responseBody,
		Header:     res.Header,
	}, nil
}

// normalizeEndpoint guarantees exactly one leading slash so joining with
// the base URL never produces "//path" or "basepath".
func normalizeEndpoint(endpoint string) string {
	return "/" + strings.TrimLeft(endpoint, "/")
}

func csrfRejected(res *RawResponse) bool {
	return res.StatusCode == http.StatusForbidden &&
		strings.Contains(strings.ToUpper(string(res.Body)), "CSRF")
}
