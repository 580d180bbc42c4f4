package ports

import (
	"context"

	"github.com/ghola/conversation-api/internal/core/domain"
)

// ProfileService exposes the public profile catalogue.
type ProfileService interface {
	ListPublic(ctx context.Context) ([]domain.Profile, error)
}
