package types

// SuccessEnvelope wraps every 2xx JSON body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public face of a pkg/errors.Error. Retryable tells clients
// whether the same request may succeed later, as with a catalog fetch that
// timed out.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every error body. RequestID echoes the X-Request-Id
// response header so a shopper's report can be matched to the logs.
type ErrorEnvelope struct {
	Error     APIError `json:"error"`
	RequestID string   `json:"request_id,omitempty"`
}
