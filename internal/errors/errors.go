package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Common error types for the SAC relay
var (
	// Configuration errors
	ErrMissingConfig = errors.New("missing SAC configuration")

	// Credential acquisition errors
	ErrTokenRequest = errors.New("access token request failed")
	ErrCSRFFetch    = errors.New("csrf token fetch failed")

	// Transport errors reaching the upstream
	ErrUpstreamTimeout     = errors.New("upstream request timed out")
	ErrUpstreamUnreachable = errors.New("upstream unreachable")

	// General errors
	ErrBadRequest = errors.New("bad request")
	ErrInternal   = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// ClassifyTransport maps an error returned by the HTTP client into the
// relay's transport taxonomy. Timeouts (including context deadlines) become
// ErrUpstreamTimeout, connection-level failures become
// ErrUpstreamUnreachable. Errors already carrying a relay sentinel pass
// through unchanged.
func ClassifyTransport(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUpstreamTimeout) || errors.Is(err, ErrUpstreamUnreachable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	return err
}
