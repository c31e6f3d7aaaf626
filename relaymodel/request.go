// Package relaymodel defines the JSON envelope exchanged between the test
// console and the relay.
package relaymodel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Request is the triple the console submits to POST /api/request. Payload
// stays raw; the relay forwards it byte-for-byte to the upstream.
type Request struct {
	Method   string          `json:"method"`
	Endpoint string          `json:"endpoint"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// Validate checks the envelope's shape: method and endpoint are required,
// and the payload, when present, must be a JSON object rather than an
// array or scalar.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Method) == "" {
		return fmt.Errorf("method is required")
	}
	if strings.TrimSpace(r.Endpoint) == "" {
		return fmt.Errorf("endpoint is required")
	}
	if !r.HasPayload() {
		return nil
	}
	trimmed := bytes.TrimLeft(r.Payload, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("payload must be a JSON object")
	}
	if !json.Valid(r.Payload) {
		return fmt.Errorf("payload is not valid JSON")
	}
	return nil
}

// HasPayload reports whether a payload was supplied. An explicit JSON null
// counts as absent, matching how the console clears the payload field.
func (r *Request) HasPayload() bool {
	trimmed := bytes.TrimSpace(r.Payload)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
