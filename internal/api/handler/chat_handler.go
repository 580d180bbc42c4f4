package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ghola/conversation-api/internal/api/metrics"
	"github.com/ghola/conversation-api/internal/api/middleware"
	"github.com/ghola/conversation-api/internal/core/domain"
	"github.com/ghola/conversation-api/internal/core/ports"
)

// ChatHandler exposes the conversation-initialization handshake.
type ChatHandler struct {
	chatService ports.ChatService
}

func NewChatHandler(chatService ports.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Init runs the chat handshake and issues a credential.
//
// @Summary      Start a conversation with a profile
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        body  body      initConversationRequest  true  "Identity claim and target profile"
// @Success      200   {object}  initConversationResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/v1/chat/init [post]
func (h *ChatHandler) Init(c echo.Context) error {
	var req initConversationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.HandshakeFailuresTotal.WithLabelValues("missing_fields").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.chatService.StartConversation(c.Request().Context(), ports.StartConversationInput{
		Email:         req.Email,
		Token:         req.Token,
		ProfileID:     req.ProfileID,
		EnableLogging: req.EnableLogging,
		CustomerID:    req.CustomerID,
	})
	if err != nil {
		metrics.HandshakeFailuresTotal.WithLabelValues(failureReason(err)).Inc()
		return err
	}

	metrics.ConversationsStartedTotal.WithLabelValues(string(result.ProfileVisibility)).Inc()

	// Same credential in both places: HTTP-only cookie for browsers, JSON
	// field for explicit bearer-token clients. No cookie expiry attribute —
	// the token's internal expiry is the effective lifetime.
	c.SetCookie(&http.Cookie{
		Name:     middleware.CredentialCookie,
		Value:    result.Credential,
		Path:     "/",
		HttpOnly: true,
	})

	return c.JSON(http.StatusOK, initConversationResponse{
		Message: "Conversation Record created",
		JWT:     result.Credential,
	})
}

// Conversation returns the session bound to the presented credential,
// re-checking existence so deleted conversations reject valid tokens.
//
// @Summary      Fetch the current conversation
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Conversation
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/chat/conversation [get]
func (h *ChatHandler) Conversation(c echo.Context) error {
	conversationID, err := ctxConversationID(c)
	if err != nil {
		return err
	}

	conversation, err := h.chatService.GetConversation(c.Request().Context(), conversationID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conversation)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return "missing_fields"
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, domain.ErrProfileNotFound):
		return "profile_not_found"
	case errors.Is(err, domain.ErrProfileNotAccessible):
		return "not_accessible"
	default:
		return "internal"
	}
}
