package response

// StandardApiResponse is the envelope every endpoint returns. Status is
// "success" or "error"; Errors carries an ErrorDetail or field-level
// validation messages.
type StandardApiResponse struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}

// ErrorDetail classifies a failed request so clients can branch on Kind
// (for example, offering the next-best seat on a CONFLICT) without
// parsing the message text.
type ErrorDetail struct {
	Kind string `json:"kind"`
}
