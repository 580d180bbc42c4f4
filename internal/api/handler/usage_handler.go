package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ghola/conversation-api/internal/core/domain"
	"github.com/ghola/conversation-api/internal/core/ports"
)

// UsageHandler serves the usage reporting endpoints. Both routes sit behind
// the Identity middleware; the admin route additionally behind RBAC.
type UsageHandler struct {
	usage ports.UsageReader
}

func NewUsageHandler(usage ports.UsageReader) *UsageHandler {
	return &UsageHandler{usage: usage}
}

type usageListResponse struct {
	Data []domain.UsageRecord `json:"data"`
}

// Today handles GET /api/v1/usage/today — the caller's own entry.
//
// @Summary      Today's usage for the authenticated user
// @Tags         usage
// @Produce      json
// @Security     ApiTokenAuth
// @Success      200  {object}  domain.UsageRecord
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/usage/today [get]
func (h *UsageHandler) Today(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	record, err := h.usage.TodayForUser(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, record)
}

// TodayAll handles GET /api/v1/admin/usage/today — every user's entry.
//
// @Summary      Today's usage across all users
// @Tags         usage
// @Produce      json
// @Security     ApiTokenAuth
// @Success      200  {object}  usageListResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/v1/admin/usage/today [get]
func (h *UsageHandler) TodayAll(c echo.Context) error {
	records, err := h.usage.TodayAll(c.Request().Context())
	if err != nil {
		return err
	}
	if records == nil {
		records = []domain.UsageRecord{}
	}
	return c.JSON(http.StatusOK, usageListResponse{Data: records})
}
