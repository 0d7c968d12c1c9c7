package service

import (
	"context"
	"time"

	"github.com/rifahub/backend/internal/domain"
	"github.com/rifahub/backend/internal/dto"
	"github.com/rifahub/backend/internal/repository"
)

type organizerService struct {
	organizerRepo repository.OrganizerRepository
}

// NewOrganizerService creates a new OrganizerService
func NewOrganizerService(organizerRepo repository.OrganizerRepository) OrganizerService {
	return &organizerService{organizerRepo: organizerRepo}
}

func (s *organizerService) GetProfile(ctx context.Context, organizerID string) (*domain.Organizer, error) {
	org, err := s.organizerRepo.GetByID(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrOrganizerNotFound
	}
	return org, nil
}

func (s *organizerService) UpdateProfile(ctx context.Context, organizerID string, req *dto.UpdateProfileRequest) (*domain.Organizer, error) {
	org, err := s.GetProfile(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		org.Name = req.Name
	}
	if req.PayoutKey != "" {
		org.PayoutKey = req.PayoutKey
	}
	org.UpdatedAt = time.Now()
	if err := s.organizerRepo.Update(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}
