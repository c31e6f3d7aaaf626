package sac_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saclabs/sac-relay/internal/errors"
)

func TestExecuteEndpointNormalization(t *testing.T) {
	upstream := newStubUpstream(t)
	var seenPaths []string
	upstream.targetHandler = func(w http.ResponseWriter, r *http.Request) {
		seenPaths = append(seenPaths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}
	client := newTestClient(t, upstream)

	for _, endpoint := range []string{"version", "/version", "//version"} {
		res, err := client.Execute(context.Background(), "GET", endpoint, nil)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, res.StatusCode)
	}
	require.Equal(t, []string{"/version", "/version", "/version"}, seenPaths)
}

func TestExecuteAttachesHeaders(t *testing.T) {
	upstream := newStubUpstream(t)
	var got http.Header
	upstream.targetHandler = func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusCreated)
	}
	client := newTestClient(t, upstream)

	res, err := client.Execute(context.Background(), "post", "/api/v1/stories", []byte(`{"name":"s"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	require.Equal(t, "Bearer "+testAccessToken, got.Get("Authorization"))
	require.Equal(t, "true", got.Get("x-sap-sac-custom-auth"))
	require.Equal(t, "application/json", got.Get("Content-Type"))
	require.Equal(t, testCSRFToken, got.Get("x-csrf-token"))
	require.EqualValues(t, 1, upstream.csrfRequests.Load())
}

func TestExecuteGetOmitsCSRFToken(t *testing.T) {
	upstream := newStubUpstream(t)
	var got http.Header
	upstream.targetHandler = func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}
	client := newTestClient(t, upstream)

	_, err := client.Execute(context.Background(), "GET", "/api/v1/version", nil)
	require.NoError(t, err)
	require.Empty(t, got.Get("x-csrf-token"))
	require.EqualValues(t, 0, upstream.csrfRequests.Load())
}

func TestExecuteCSRFTokenReusedAcrossCalls(t *testing.T) {
	upstream := newStubUpstream(t)
	upstream.targetHandler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
	client := newTestClient(t, upstream)

	for i := 0; i < 3; i++ {
		_, err := client.Execute(context.Background(), "POST", "/api/v1/stories", nil)
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, upstream.csrfRequests.Load(), "csrf handshake must run once, not per call")
}

func TestExecuteCSRFRetryOnceThenSuccess(t *testing.T) {
	upstream := newStubUpstream(t)
	upstream.targetHandler = func(w http.ResponseWriter, r *http.Request) {
		if upstream.targetRequests.Load() == 1 {
			http.Error(w, "CSRF token validation failed", http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`created`))
	}
	client := newTestClient(t, upstream)

	res, err := client.Execute(context.Background(), "POST", "/api/v1/stories", []byte(`{}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "created", string(res.Body))

	require.EqualValues(t, 2, upstream.targetRequests.Load(), "exactly one retry")
	require.EqualValues(t, 2, upstream.csrfRequests.Load(), "retry must force a fresh csrf handshake")
}

func TestExecuteCSRFRetryOnceThenGiveUp(t *testing.T) {
	upstream := newStubUpstream(t)
	upstream.targetHandler = func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "CSRF token validation failed", http.StatusForbidden)
	}
	client := newTestClient(t, upstream)

	res, err := client.Execute(context.Background(), "POST", "/api/v1/stories", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, res.StatusCode)
	require.EqualValues(t, 2, upstream.targetRequests.Load(), "no third attempt on persistent failure")
}

func TestExecuteNoRetryOnPlain403(t *testing.T) {
	upstream := newStubUpstream(t)
	upstream.targetHandler = func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "insufficient privileges", http.StatusForbidden)
	}
	client := newTestClient(t, upstream)

	res, err := client.Execute(context.Background(), "POST", "/api/v1/stories", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, res.StatusCode)
	require.EqualValues(t, 1, upstream.targetRequests.Load(), "only a CSRF complaint triggers the retry")
}

func TestExecuteUpstreamErrorIsNotAnError(t *testing.T) {
	upstream := newStubUpstream(t)
	upstream.targetHandler = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
	}
	client := newTestClient(t, upstream)

	res, err := client.Execute(context.Background(), "GET", "/api/v1/nothing", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	require.Equal(t, "application/json", res.ContentType())
}

func TestExecuteUnreachableUpstream(t *testing.T) {
	upstream := newStubUpstream(t)
	client := newTestClient(t, upstream)
	upstream.server.Close()

	_, err := client.Execute(context.Background(), "GET", "/api/v1/version", nil)
	require.ErrorIs(t, err, errors.ErrUpstreamUnreachable)
}
