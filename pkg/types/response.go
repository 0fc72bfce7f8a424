package types

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// DetailEnvelope is the bare error body used by the webhook endpoint.
type DetailEnvelope struct {
	Detail string `json:"detail"`
}
