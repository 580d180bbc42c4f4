package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ghola/conversation-api/internal/core/domain"
	"github.com/ghola/conversation-api/internal/core/ports"
)

type profileService struct {
	repo   ports.ProfileRepository
	logger zerolog.Logger
}

// NewProfileService returns a ProfileService backed by the given repository.
func NewProfileService(repo ports.ProfileRepository, logger zerolog.Logger) ports.ProfileService {
	return &profileService{repo: repo, logger: logger}
}

// ListPublic returns every publicly visible profile for the explore view.
func (s *profileService) ListPublic(ctx context.Context) ([]domain.Profile, error) {
	profiles, err := s.repo.ListPublic(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list public profiles")
		return nil, err
	}
	return profiles, nil
}
