package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ghola/conversation-api/internal/core/domain"
)

// RBAC enforces role-based access control on identity-authenticated routes.
// Must run after Identity. Note this gates admin routes only: the handshake's
// profile visibility check deliberately ignores roles.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, _ := c.Get("user").(*domain.User)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
			}
			if _, ok := allowed[user.Role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
