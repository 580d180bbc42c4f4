package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ghola/conversation-api/internal/core/ports"
)

// MessageDispatcher is the interface the handler uses to enqueue message
// events for asynchronous accounting.
type MessageDispatcher interface {
	Enqueue(event ports.MessageEventInput)
}

// MessageHandler ingests exchanged messages for logging and usage
// accounting. Generation itself happens elsewhere; this endpoint only
// records what was exchanged.
type MessageHandler struct {
	dispatcher MessageDispatcher
}

// NewMessageHandler creates a MessageHandler backed by the given dispatcher.
func NewMessageHandler(dispatcher MessageDispatcher) *MessageHandler {
	return &MessageHandler{dispatcher: dispatcher}
}

// Post handles POST /api/v1/chat/messages — enqueues one message, returns 202.
//
// @Summary      Record an exchanged message
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      postMessageRequest  true  "Exchanged message"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/v1/chat/messages [post]
func (h *MessageHandler) Post(c echo.Context) error {
	conversationID, err := ctxConversationID(c)
	if err != nil {
		return err
	}

	var req postMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	messageID := req.MessageID
	if messageID == "" {
		messageID = uuid.NewString()
	}

	h.dispatcher.Enqueue(ports.MessageEventInput{
		ConversationID: conversationID,
		MessageID:      messageID,
		Role:           req.Role,
		Content:        req.Content,
		TokenCount:     req.TokenCount,
		Timestamp:      time.Now().UTC(),
	})

	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message:   "message accepted",
		MessageID: messageID,
	})
}
