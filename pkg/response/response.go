package response

// Envelope shapes returned by the HTTP APIs. Webhook endpoints use the
// minimal Received/Error forms the payment provider expects; form and admin
// endpoints use the richer Result envelope.

// Received acknowledges a webhook delivery.
type Received struct {
	Received bool   `json:"received"`
	Status   string `json:"status,omitempty"`
}

func OKReceived() *Received { return &Received{Received: true} }
func Duplicate() *Received  { return &Received{Received: true, Status: "duplicate"} }

// ErrorBody carries an intentionally generic error message. Internal detail
// stays in server-side logs, never in the response.
type ErrorBody struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func Err(msg string) *ErrorBody { return &ErrorBody{Error: msg} }

func ErrWithDetails(msg string, details map[string]string) *ErrorBody {
	return &ErrorBody{Error: msg, Details: details}
}

// Result is the generic success envelope for form and admin endpoints.
type Result[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

func OK[T any](msg string, data T) *Result[T] {
	return &Result[T]{Success: true, Message: msg, Data: data}
}
