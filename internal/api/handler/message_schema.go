package handler

// postMessageRequest records one exchanged message against the credential's
// conversation. messageId is optional; the server assigns one when absent so
// redelivered requests with the same id are accounted once.
type postMessageRequest struct {
	MessageID  string `json:"messageId"`
	Role       string `json:"role"       validate:"required,oneof=user assistant"`
	Content    string `json:"content"    validate:"required"`
	TokenCount int64  `json:"tokenCount" validate:"min=0"`
}

type acceptedResponse struct {
	Message   string `json:"message"`
	MessageID string `json:"message_id"`
}
