package repository

import (
	"context"
	"time"

	"github.com/rifahub/backend/internal/domain"
)

// RaffleRepository defines the interface for raffle data access
type RaffleRepository interface {
	// Create creates a new raffle
	Create(ctx context.Context, raffle *domain.Raffle) error
	// GetByID retrieves a raffle by ID, nil when it does not exist
	GetByID(ctx context.Context, id string) (*domain.Raffle, error)
	// ListByOrganizer retrieves an organizer's raffles, newest first
	ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Raffle, error)
	// ListActive retrieves active raffles with pagination
	ListActive(ctx context.Context, limit, offset int) ([]*domain.Raffle, int, error)
	// CountByOrganizer counts how many raffles an organizer has
	CountByOrganizer(ctx context.Context, organizerID string) (int, error)
	// Close atomically moves an active raffle to closed with a winning
	// number; reports false when the raffle was not active.
	Close(ctx context.Context, id string, winningNumber int, closedAt time.Time) (bool, error)
	// Delete removes a raffle
	Delete(ctx context.Context, id string) error
}

// CampaignRepository defines the interface for campaign data access
type CampaignRepository interface {
	Create(ctx context.Context, campaign *domain.Campaign) error
	GetByID(ctx context.Context, id string) (*domain.Campaign, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Campaign, error)
	// ListPublic retrieves campaigns for the public listing, featured first
	ListPublic(ctx context.Context, limit, offset int) ([]*domain.Campaign, int, error)
	CountByOrganizer(ctx context.Context, organizerID string) (int, error)
	Delete(ctx context.Context, id string) error
}

// BuyerRank is one row of a campaign's top-buyers ranking
type BuyerRank struct {
	Holder        domain.Holder `json:"holder"`
	TotalQuantity int           `json:"total_quantity"`
}

// PledgeRepository defines the interface for campaign pledge data access
type PledgeRepository interface {
	Create(ctx context.Context, pledge *domain.Pledge) error
	GetByID(ctx context.Context, id string) (*domain.Pledge, error)
	// UpdateStatus atomically moves a pledge from expected to next status;
	// reports false when the pledge was not in the expected status.
	UpdateStatus(ctx context.Context, id, expected, next string) (bool, error)
	// FindByHolder returns all pledges of a buyer identity across campaigns
	FindByHolder(ctx context.Context, taxID, phone string) ([]*domain.Pledge, error)
	// TopBuyers aggregates paid quantity per buyer for a campaign
	TopBuyers(ctx context.Context, campaignID string, limit int) ([]*BuyerRank, error)
	// DeleteByCampaign removes all pledges of a campaign
	DeleteByCampaign(ctx context.Context, campaignID string) error
}

// OrganizerRepository defines the interface for organizer account access
type OrganizerRepository interface {
	Create(ctx context.Context, organizer *domain.Organizer) error
	GetByID(ctx context.Context, id string) (*domain.Organizer, error)
	Update(ctx context.Context, organizer *domain.Organizer) error
}

// PaymentRepository defines the interface for payment record access
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	// UpdateStatus atomically moves a payment from expected to next
	// status; reports false when the payment was not in expected status.
	UpdateStatus(ctx context.Context, id, expected, next string) (bool, error)
	// SetProviderRef records the provider's session/transaction reference
	SetProviderRef(ctx context.Context, id, providerRef string) error
	// ListPendingByOrganizer returns pending payments whose raffle or
	// campaign belongs to the organizer, oldest first.
	ListPendingByOrganizer(ctx context.Context, organizerID string) ([]*domain.Payment, error)
}
