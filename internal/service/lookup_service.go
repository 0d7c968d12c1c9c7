package service

import (
	"context"

	"github.com/rifahub/backend/internal/domain"
	"github.com/rifahub/backend/internal/dto"
	"github.com/rifahub/backend/internal/repository"
)

type lookupService struct {
	slotRepo     repository.SlotRepository
	pledgeRepo   repository.PledgeRepository
	raffleRepo   repository.RaffleRepository
	campaignRepo repository.CampaignRepository
}

// NewLookupService creates a new LookupService
func NewLookupService(
	slotRepo repository.SlotRepository,
	pledgeRepo repository.PledgeRepository,
	raffleRepo repository.RaffleRepository,
	campaignRepo repository.CampaignRepository,
) LookupService {
	return &lookupService{
		slotRepo:     slotRepo,
		pledgeRepo:   pledgeRepo,
		raffleRepo:   raffleRepo,
		campaignRepo: campaignRepo,
	}
}

// FindByBuyer collects every slot and pledge held by the tax-id + phone
// pair. Unknown buyers get an empty list, not an error, so the endpoint
// does not reveal which identities exist.
func (s *lookupService) FindByBuyer(ctx context.Context, taxID, phone string) (*dto.BuyerTicketsResponse, error) {
	tickets := make([]*dto.BuyerTicket, 0)

	slots, err := s.slotRepo.FindByHolder(ctx, taxID, phone)
	if err != nil {
		return nil, err
	}
	raffleTitles := make(map[string]string)
	for _, slot := range slots {
		title, ok := raffleTitles[slot.RaffleID]
		if !ok {
			raffle, err := s.raffleRepo.GetByID(ctx, slot.RaffleID)
			if err != nil {
				return nil, err
			}
			if raffle != nil {
				title = raffle.Title
			}
			raffleTitles[slot.RaffleID] = title
		}
		tickets = append(tickets, &dto.BuyerTicket{
			Kind:     "raffle",
			ItemID:   slot.RaffleID,
			Title:    title,
			Number:   slot.Number,
			Status:   slot.Status,
			IsWinner: slot.IsWinner,
		})
	}

	pledges, err := s.pledgeRepo.FindByHolder(ctx, taxID, phone)
	if err != nil {
		return nil, err
	}
	campaignTitles := make(map[string]string)
	for _, pledge := range pledges {
		if pledge.Status == domain.PledgeStatusCancelled {
			continue
		}
		title, ok := campaignTitles[pledge.CampaignID]
		if !ok {
			campaign, err := s.campaignRepo.GetByID(ctx, pledge.CampaignID)
			if err != nil {
				return nil, err
			}
			if campaign != nil {
				title = campaign.Title
			}
			campaignTitles[pledge.CampaignID] = title
		}
		tickets = append(tickets, &dto.BuyerTicket{
			Kind:     "campaign",
			ItemID:   pledge.CampaignID,
			Title:    title,
			Quantity: pledge.Quantity,
			Status:   pledge.Status,
		})
	}

	return &dto.BuyerTicketsResponse{Tickets: tickets}, nil
}
