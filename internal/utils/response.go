package utils

// Response is the envelope every API handler returns. Status mirrors the
// HTTP status code so clients parsing only the body still see the outcome.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"` // null in JSON when there is no payload
}

// NewSuccessResponse wraps a payload in a 200 envelope.
func NewSuccessResponse(message string, data interface{}) Response {
	return Response{
		Status:  200,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse builds an envelope for a failed request. The data field
// stays nil; the message carries whatever the client should see.
func NewErrorResponse(status int, message string) Response {
	return Response{
		Status:  status,
		Message: message,
	}
}
