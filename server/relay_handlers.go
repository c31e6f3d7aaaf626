package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/saclabs/sac-relay/internal/errors"
	"github.com/saclabs/sac-relay/relaymodel"
	"github.com/saclabs/sac-relay/sac"
)

const contentTypeJSON = "application/json; charset=utf-8"

// RelayHandler accepts a (method, endpoint, payload) triple from the
// console, executes it against SAC through the shared session client, and
// wraps the raw upstream response in the relay envelope. Upstream error
// statuses are forwarded inside a 200 envelope; only relay-level failures
// (validation, auth, transport) produce error statuses here.
func (s *Server) RelayHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req relaymodel.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, relaymodel.ErrorKindBadRequest,
				fmt.Sprintf("decoding request body: %v", err))
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, relaymodel.ErrorKindBadRequest, err.Error())
			return
		}

		// Every in-flight relay call holds one upstream slot; a hung
		// upstream call keeps its slot until the client timeout fires.
		if err := s.upstreamSlots.Acquire(r.Context(), 1); err != nil {
			writeError(w, http.StatusServiceUnavailable, relaymodel.ErrorKindInternal,
				"request cancelled while waiting for an upstream slot")
			return
		}
		defer s.upstreamSlots.Release(1)

		var payload []byte
		if req.HasPayload() {
			payload = req.Payload
		}

		res, err := s.sac.Execute(r.Context(), req.Method, req.Endpoint, payload)
		if err != nil {
			writeRelayError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, buildEnvelope(res))
	}
}

// PreflightHandler backs the OPTIONS catch-all. Same-origin OPTIONS calls
// land here after CorsMiddleware passes them through.
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// HealthHandler reports process liveness for deploy probes.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"app":    s.config.GetAppName(),
		})
	}
}

// buildEnvelope converts a raw upstream response into the console-facing
// envelope. JSON bodies are decoded when the upstream says they are JSON;
// everything else stays raw text, even text that happens to parse.
func buildEnvelope(res *sac.RawResponse) relaymodel.Response {
	return relaymodel.Response{
		StatusCode: res.StatusCode,
		Body:       decodeBody(res),
		Headers:    flattenHeaders(res.Header),
	}
}

func decodeBody(res *sac.RawResponse) any {
	if res.ContentType() != "application/json" {
		return string(res.Body)
	}
	var decoded any
	if err := json.Unmarshal(res.Body, &decoded); err != nil {
		// Upstream lied about the content type; hand back the raw text.
		return string(res.Body)
	}
	return decoded
}

func flattenHeaders(header http.Header) map[string]string {
	flat := make(map[string]string, len(header))
	for name, values := range header {
		flat[name] = strings.Join(values, ", ")
	}
	return flat
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("encoding response")
	}
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, relaymodel.ErrorResponse{Error: kind, Message: message})
}

func writeInternalError(w http.ResponseWriter, cause any) {
	writeError(w, http.StatusInternalServerError, relaymodel.ErrorKindInternal,
		fmt.Sprintf("%v", cause))
}

// writeRelayError maps a session client failure onto the relay's error
// taxonomy. Transport failures become gateway statuses; credential
// acquisition failures are the relay's own fault and become 500s.
func writeRelayError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errors.ErrBadRequest):
		writeError(w, http.StatusBadRequest, relaymodel.ErrorKindBadRequest, err.Error())
	case errors.Is(err, errors.ErrMissingConfig):
		writeError(w, http.StatusInternalServerError, relaymodel.ErrorKindConfig, err.Error())
	case errors.Is(err, errors.ErrTokenRequest), errors.Is(err, errors.ErrCSRFFetch):
		writeError(w, http.StatusInternalServerError, relaymodel.ErrorKindAuth, err.Error())
	case errors.Is(err, errors.ErrUpstreamTimeout):
		writeError(w, http.StatusGatewayTimeout, relaymodel.ErrorKindUpstreamTimeout, err.Error())
	case errors.Is(err, errors.ErrUpstreamUnreachable):
		writeError(w, http.StatusBadGateway, relaymodel.ErrorKindUpstreamUnreachable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, relaymodel.ErrorKindInternal,
			fmt.Sprintf("%T: %v", err, err))
	}
}
