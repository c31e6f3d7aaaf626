package relaymodel

// Error kinds for the relay's own failures. Upstream application errors are
// never one of these; they travel inside a normal Response.
const (
	ErrorKindBadRequest          = "bad_request"
	ErrorKindConfig              = "config_error"
	ErrorKindAuth                = "auth_error"
	ErrorKindUpstreamTimeout     = "upstream_timeout"
	ErrorKindUpstreamUnreachable = "upstream_unreachable"
	ErrorKindInternal            = "internal_error"
)

// ErrorResponse is the envelope returned when the relay itself fails,
// as opposed to the upstream returning an error status.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
