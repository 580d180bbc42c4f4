package handler

// initConversationRequest is the chat handshake payload. Field names match
// the original client contract, camelCase included.
type initConversationRequest struct {
	Token         string `json:"token"     validate:"required"`
	Email         string `json:"email"     validate:"required,email"`
	ProfileID     string `json:"profileId" validate:"required"`
	EnableLogging bool   `json:"enableLogging"`
	CustomerID    string `json:"customerId"`
}

// initConversationResponse carries the issued credential. The same token is
// also set as the gholaJwt cookie; both clients read the same byte string.
type initConversationResponse struct {
	Message string `json:"message"`
	JWT     string `json:"jwt"`
}

type messageResponse struct {
	Message string `json:"message"`
}
