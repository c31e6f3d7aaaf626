package config

import "strconv"

const maxConcurrentVar = "RELAY_MAX_CONCURRENT"

// RelayConfig bounds the relay's own behaviour, independent of the upstream
// connection settings.
type RelayConfig interface {
	GetMaxConcurrentUpstreamCalls() int64
}

type Relay struct{}

var _ RelayConfig = Relay{}

func (Relay) GetMaxConcurrentUpstreamCalls() int64 {
	n, err := strconv.ParseInt(GetEnv(maxConcurrentVar, "4"), 10, 64)
	if err != nil || n <= 0 {
		return 4
	}
	return n
}
