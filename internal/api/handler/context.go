package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ghola/conversation-api/internal/core/domain"
)

// ctxConversationID extracts the conversation id injected by the Credential
// middleware. An empty value means the middleware did not run or the token
// carried no binding; either way the request is unauthenticated.
func ctxConversationID(c echo.Context) (string, error) {
	id, _ := c.Get("conversation_id").(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing conversation credential")
	}
	return id, nil
}

// ctxUser extracts the identity resolved by the Identity middleware.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get("user").(*domain.User)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}
	return user, nil
}
