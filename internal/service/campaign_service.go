package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rifahub/backend/internal/domain"
	"github.com/rifahub/backend/internal/dto"
	"github.com/rifahub/backend/internal/repository"
	"github.com/rifahub/backend/pkg/logger"
	"github.com/rifahub/backend/pkg/telemetry"
)

type campaignService struct {
	campaignRepo repository.CampaignRepository
	pledgeRepo   repository.PledgeRepository
	quota        QuotaService
	log          *logger.Logger
}

// NewCampaignService creates a new CampaignService
func NewCampaignService(
	campaignRepo repository.CampaignRepository,
	pledgeRepo repository.PledgeRepository,
	quota QuotaService,
	log *logger.Logger,
) CampaignService {
	return &campaignService{
		campaignRepo: campaignRepo,
		pledgeRepo:   pledgeRepo,
		quota:        quota,
		log:          log,
	}
}

func (s *campaignService) CreateCampaign(ctx context.Context, organizerID string, req *dto.CreateCampaignRequest) (*domain.Campaign, error) {
	ctx, span := telemetry.StartSpan(ctx, "campaign.Create")
	defer span.End()

	if err := s.quota.CanCreateCampaign(ctx, organizerID); err != nil {
		return nil, err
	}

	now := time.Now()
	campaign := &domain.Campaign{
		ID:          uuid.New().String(),
		OrganizerID: organizerID,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		UnitPrice:   req.UnitPrice,
		Mode:        req.Mode,
		Featured:    req.Featured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("campaign created",
		zap.String("campaign_id", campaign.ID),
		zap.String("organizer_id", organizerID),
	)
	return campaign, nil
}

func (s *campaignService) GetCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, domain.ErrCampaignNotFound
	}
	return campaign, nil
}

func (s *campaignService) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Campaign, error) {
	return s.campaignRepo.ListByOrganizer(ctx, organizerID)
}

func (s *campaignService) ListPublic(ctx context.Context, limit, offset int) ([]*domain.Campaign, int, error) {
	return s.campaignRepo.ListPublic(ctx, limit, offset)
}

// CreatePledge records a buyer's intent to purchase quantity units. Unlike
// raffle slots there is no inventory to contend for, so creation always
// succeeds and the pledge waits for its payment outcome.
func (s *campaignService) CreatePledge(ctx context.Context, campaignID string, quantity int, holder domain.Holder) (*domain.Pledge, error) {
	ctx, span := telemetry.StartSpan(ctx, "campaign.CreatePledge")
	defer span.End()

	if _, err := s.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}

	now := time.Now()
	pledge := &domain.Pledge{
		ID:         uuid.New().String(),
		CampaignID: campaignID,
		Quantity:   quantity,
		Holder:     holder,
		Status:     domain.PledgeStatusAwaitingPayment,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.pledgeRepo.Create(ctx, pledge); err != nil {
		return nil, err
	}
	return pledge, nil
}

// MarkPledgePaid settles a pledge. Repeated calls after success are no-ops
// so webhook redelivery is harmless; a cancelled pledge cannot be paid.
func (s *campaignService) MarkPledgePaid(ctx context.Context, pledgeID string) error {
	return s.settlePledge(ctx, pledgeID, domain.PledgeStatusPaid)
}

// CancelPledge voids a pledge, idempotently. A paid pledge cannot be
// cancelled.
func (s *campaignService) CancelPledge(ctx context.Context, pledgeID string) error {
	return s.settlePledge(ctx, pledgeID, domain.PledgeStatusCancelled)
}

func (s *campaignService) settlePledge(ctx context.Context, pledgeID, next string) error {
	ok, err := s.pledgeRepo.UpdateStatus(ctx, pledgeID, domain.PledgeStatusAwaitingPayment, next)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	pledge, err := s.pledgeRepo.GetByID(ctx, pledgeID)
	if err != nil {
		return err
	}
	if pledge == nil {
		return domain.ErrPledgeNotFound
	}
	if pledge.Status == next {
		// Redelivered outcome, already applied.
		return nil
	}
	return domain.ErrAlreadyClosed
}

func (s *campaignService) TopBuyers(ctx context.Context, campaignID string, limit int) ([]*repository.BuyerRank, error) {
	if _, err := s.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.pledgeRepo.TopBuyers(ctx, campaignID, limit)
}

func (s *campaignService) DeleteCampaign(ctx context.Context, organizerID, campaignID string) error {
	campaign, err := s.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if campaign.OrganizerID != organizerID {
		return domain.ErrNotOwner
	}
	if err := s.pledgeRepo.DeleteByCampaign(ctx, campaignID); err != nil {
		return err
	}
	return s.campaignRepo.Delete(ctx, campaignID)
}
