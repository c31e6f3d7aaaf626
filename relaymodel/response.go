package relaymodel

// Response wraps the upstream's answer for the console. Body is either a
// decoded JSON value (when the upstream declared application/json and the
// body parsed) or the raw text. Headers are the upstream's response headers
// flattened to single strings, echoed for diagnostics.
type Response struct {
	StatusCode int               `json:"status_code"`
	Body       any               `json:"body"`
	Headers    map[string]string `json:"headers"`
}
