package ports

import (
	"context"

	"github.com/ghola/conversation-api/internal/core/domain"
)

// ProfileRepository reads character profiles. Profiles are immutable from
// this service's perspective.
type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
	ListPublic(ctx context.Context) ([]domain.Profile, error)
}
