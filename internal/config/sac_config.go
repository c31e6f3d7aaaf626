package config

import (
	"strconv"
	"strings"
	"time"
)

const (
	sacBaseURLVar      = "SAC_BASE_URL"
	sacTokenURLVar     = "SAC_TOKEN_URL"
	sacClientIDVar     = "SAC_CLIENT_ID"
	sacClientSecretVar = "SAC_CLIENT_SECRET"
	sacTimeoutVar      = "SAC_TIMEOUT_SECONDS"
)

// SACConfig exposes the upstream SAP Analytics Cloud connection settings.
// The credential getters have no defaults; the session client refuses to
// construct when any of them is empty.
type SACConfig interface {
	GetSACBaseURL() string
	GetSACTokenURL() string
	GetSACClientID() string
	GetSACClientSecret() string
	GetSACTimeout() time.Duration
}

type SAC struct{}

var _ SACConfig = SAC{}

func (SAC) GetSACBaseURL() string {
	return strings.TrimRight(GetEnv(sacBaseURLVar, ""), "/")
}

func (SAC) GetSACTokenURL() string {
	return GetEnv(sacTokenURLVar, "")
}

func (SAC) GetSACClientID() string {
	return GetEnv(sacClientIDVar, "")
}

func (SAC) GetSACClientSecret() string {
	return GetEnv(sacClientSecretVar, "")
}

func (SAC) GetSACTimeout() time.Duration {
	seconds, err := strconv.Atoi(GetEnv(sacTimeoutVar, "30"))
	if err != nil || seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}
