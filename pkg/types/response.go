package types

// SuccessEnvelope wraps every successful bridge response.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is what a screen receives when a call fails. Retryable tells the screen
// whether offering "try again" makes sense (network and storage failures).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	Details   any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
