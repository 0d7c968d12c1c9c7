package service

import (
	"context"
	"fmt"

	"github.com/rifahub/backend/internal/domain"
	"github.com/rifahub/backend/internal/dto"
	"github.com/rifahub/backend/internal/repository"
)

type quotaService struct {
	organizerRepo repository.OrganizerRepository
	raffleRepo    repository.RaffleRepository
	campaignRepo  repository.CampaignRepository
}

// NewQuotaService creates a new QuotaService
func NewQuotaService(
	organizerRepo repository.OrganizerRepository,
	raffleRepo repository.RaffleRepository,
	campaignRepo repository.CampaignRepository,
) QuotaService {
	return &quotaService{
		organizerRepo: organizerRepo,
		raffleRepo:    raffleRepo,
		campaignRepo:  campaignRepo,
	}
}

func (s *quotaService) limits(ctx context.Context, organizerID string) (domain.PlanLimits, string, error) {
	org, err := s.organizerRepo.GetByID(ctx, organizerID)
	if err != nil {
		return domain.PlanLimits{}, "", err
	}
	if org == nil {
		return domain.PlanLimits{}, "", domain.ErrOrganizerNotFound
	}
	return domain.LimitsForTier(org.PlanTier), org.PlanTier, nil
}

func (s *quotaService) CanCreateRaffle(ctx context.Context, organizerID string) error {
	limits, _, err := s.limits(ctx, organizerID)
	if err != nil {
		return err
	}
	count, err := s.raffleRepo.CountByOrganizer(ctx, organizerID)
	if err != nil {
		return err
	}
	if count >= limits.MaxRaffles {
		return fmt.Errorf("%w: plan allows %d raffles", domain.ErrQuotaExceeded, limits.MaxRaffles)
	}
	return nil
}

func (s *quotaService) CanCreateCampaign(ctx context.Context, organizerID string) error {
	limits, _, err := s.limits(ctx, organizerID)
	if err != nil {
		return err
	}
	count, err := s.campaignRepo.CountByOrganizer(ctx, organizerID)
	if err != nil {
		return err
	}
	if count >= limits.MaxCampaigns {
		return fmt.Errorf("%w: plan allows %d campaigns", domain.ErrQuotaExceeded, limits.MaxCampaigns)
	}
	return nil
}

func (s *quotaService) ValidateSlotCount(ctx context.Context, organizerID string, requestedSlots int) error {
	limits, _, err := s.limits(ctx, organizerID)
	if err != nil {
		return err
	}
	if requestedSlots > limits.MaxSlotsPerRaffle {
		return fmt.Errorf("%w: plan allows at most %d slots per raffle", domain.ErrQuotaExceeded, limits.MaxSlotsPerRaffle)
	}
	return nil
}

func (s *quotaService) Usage(ctx context.Context, organizerID string) (*dto.UsageSummary, error) {
	limits, tier, err := s.limits(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	raffleCount, err := s.raffleRepo.CountByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	campaignCount, err := s.campaignRepo.CountByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	return &dto.UsageSummary{
		PlanTier:          tier,
		RaffleCount:       raffleCount,
		MaxRaffles:        limits.MaxRaffles,
		CampaignCount:     campaignCount,
		MaxCampaigns:      limits.MaxCampaigns,
		MaxSlotsPerRaffle: limits.MaxSlotsPerRaffle,
	}, nil
}
