package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// CredentialCookie is the HTTP-only cookie carrying the conversation
// credential. The name is part of the original client contract.
const CredentialCookie = "gholaJwt"

// Credential validates the conversation JWT and injects its conversation id
// into context. The token is accepted from either an Authorization bearer
// header or the gholaJwt cookie, so both explicit-token and browser clients
// work against the same routes.
func Credential(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				if cookie, err := c.Cookie(CredentialCookie); err == nil {
					raw = cookie.Value
				}
			}
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing conversation credential")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid credential")
			}

			conversationID, _ := claims["conversation_id"].(string)
			if conversationID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "credential missing conversation binding")
			}

			c.Set("conversation_id", conversationID)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
