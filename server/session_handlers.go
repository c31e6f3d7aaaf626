package server

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// sessionInfo is the diagnostics view of the session client's caches. The
// bearer token itself never leaves the process; only its decoded claims do,
// and those only because this is an internal test tool.
type sessionInfo struct {
	BaseURL      string         `json:"base_url"`
	HasToken     bool           `json:"has_token"`
	TokenExpiry  *time.Time     `json:"token_expiry,omitempty"`
	TokenExpired bool           `json:"token_expired"`
	HasCSRFToken bool           `json:"has_csrf_token"`
	TokenClaims  map[string]any `json:"token_claims,omitempty"`
}

// SessionInfoHandler reports the state of the token and CSRF caches. SAC
// access tokens are JWTs; when the cached token parses as one, its claims
// are included (decoded without verification, purely for inspection).
func (s *Server) SessionInfoHandler() http.HandlerFunc {
	parser := jwt.NewParser()

	return func(w http.ResponseWriter, r *http.Request) {
		token, expiry, csrfCached := s.sac.CachedToken()

		info := sessionInfo{
			BaseURL:      s.sac.BaseURL(),
			HasToken:     token != "",
			HasCSRFToken: csrfCached,
		}
		if token != "" {
			info.TokenExpiry = &expiry
			info.TokenExpired = !time.Now().Before(expiry)

			claims := jwt.MapClaims{}
			if _, _, err := parser.ParseUnverified(token, claims); err == nil {
				info.TokenClaims = claims
			}
		}

		writeJSON(w, http.StatusOK, info)
	}
}
