package dto

// Envelope is the uniform response wrapper for every account and task endpoint.
type Envelope struct {
	Success bool         `json:"success"`
	Code    string       `json:"code,omitempty"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// OK wraps data in a successful envelope.
func OK(data interface{}, message string) Envelope {
	return Envelope{
		Success: true,
		Data:    data,
		Message: message,
	}
}
