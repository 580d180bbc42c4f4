package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ghola/conversation-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. The
// original clients read a "message" field, so that is what every error
// carries.
type errorResponse struct {
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"message": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404/405 from the router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors. Unresolved identity, unknown profile, and denied
	// access are all bad-request: the existing clients treat every one of
	// them as a client input problem, not a permissions problem.
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return http.StatusBadRequest, "missing token, email and/or profileId"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusBadRequest, "no user found, please check email and api token in request body"
	case errors.Is(err, domain.ErrProfileNotFound):
		return http.StatusBadRequest, "profile does not exist"
	case errors.Is(err, domain.ErrProfileNotAccessible):
		return http.StatusBadRequest, "profile is not publicly available"
	case errors.Is(err, domain.ErrConversationNotFound):
		return http.StatusNotFound, "conversation not found"
	case errors.Is(err, domain.ErrUsageNotFound):
		return http.StatusNotFound, "no usage recorded today"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "server error - please try again later"
}
