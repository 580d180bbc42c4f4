package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ghola/conversation-api/internal/core/domain"
	"github.com/ghola/conversation-api/internal/core/ports"
)

const (
	headerEmail = "X-Api-Email"
	headerToken = "X-Api-Token"
)

// Identity authenticates requests by the (email, API token) pair carried in
// headers — the same claim the handshake reads from the request body — and
// injects the resolved user into context.
func Identity(users ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			email := c.Request().Header.Get(headerEmail)
			token := c.Request().Header.Get(headerToken)
			if email == "" || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing api credentials")
			}

			user, err := users.FindByEmailAndToken(c.Request().Context(), email, token)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid api credentials")
				}
				return err
			}

			c.Set("user", user)
			return next(c)
		}
	}
}
