package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ghola/conversation-api/internal/core/domain"
	"github.com/ghola/conversation-api/internal/core/ports"
)

// ProfileHandler serves the public profile catalogue backing the explore
// view.
type ProfileHandler struct {
	profileService ports.ProfileService
}

func NewProfileHandler(profileService ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type profileListResponse struct {
	Data []domain.Profile `json:"data"`
}

// ListPublic handles GET /api/v1/profile/public.
//
// @Summary      List public profiles
// @Tags         profiles
// @Produce      json
// @Success      200  {object}  profileListResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/v1/profile/public [get]
func (h *ProfileHandler) ListPublic(c echo.Context) error {
	profiles, err := h.profileService.ListPublic(c.Request().Context())
	if err != nil {
		return err
	}
	if profiles == nil {
		profiles = []domain.Profile{}
	}
	return c.JSON(http.StatusOK, profileListResponse{Data: profiles})
}
