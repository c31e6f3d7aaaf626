package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/saclabs/sac-relay/internal/config"
)

func TestPortIsAlwaysPrefixed(t *testing.T) {
	t.Setenv("PORT", "")
	cfg := config.New()
	require.Equal(t, ":8080", cfg.GetPort())

	t.Setenv("PORT", "9000")
	require.Equal(t, ":9000", cfg.GetPort())

	t.Setenv("PORT", ":9001")
	require.Equal(t, ":9001", cfg.GetPort())
}

func TestSACBaseURLTrimsTrailingSlash(t *testing.T) {
	t.Setenv("SAC_BASE_URL", "https://tenant.example.com/")
	cfg := config.New()
	require.Equal(t, "https://tenant.example.com", cfg.GetSACBaseURL())
}

func TestSACTimeoutDefaultsAndValidates(t *testing.T) {
	t.Setenv("SAC_TIMEOUT_SECONDS", "")
	cfg := config.New()
	require.Equal(t, 30*time.Second, cfg.GetSACTimeout())

	t.Setenv("SAC_TIMEOUT_SECONDS", "5")
	require.Equal(t, 5*time.Second, cfg.GetSACTimeout())

	t.Setenv("SAC_TIMEOUT_SECONDS", "nonsense")
	require.Equal(t, 30*time.Second, cfg.GetSACTimeout())
}

func TestAllowedOriginsParsing(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "")
	cfg := config.New()
	require.True(t, cfg.GetAllowedOrigins().IsAllowedOrigin("*"), "wildcard by default")

	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	origins := cfg.GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("https://a.example.com"))
	require.True(t, origins.IsAllowedOrigin("https://b.example.com"))
	require.False(t, origins.IsAllowedOrigin("*"))
}

func TestMaxConcurrentUpstreamCalls(t *testing.T) {
	t.Setenv("RELAY_MAX_CONCURRENT", "")
	cfg := config.New()
	require.EqualValues(t, 4, cfg.GetMaxConcurrentUpstreamCalls())

	t.Setenv("RELAY_MAX_CONCURRENT", "8")
	require.EqualValues(t, 8, cfg.GetMaxConcurrentUpstreamCalls())

	t.Setenv("RELAY_MAX_CONCURRENT", "-1")
	require.EqualValues(t, 4, cfg.GetMaxConcurrentUpstreamCalls())
}
