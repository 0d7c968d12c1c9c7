package dto

import (
	"time"

	"github.com/rifahub/backend/internal/domain"
)

// UpdateProfileRequest is the payload for updating an organizer profile
type UpdateProfileRequest struct {
	Name      string `json:"name" binding:"omitempty,min=2,max=120"`
	PayoutKey string `json:"payout_key" binding:"omitempty,max=140"`
}

// ProfileResponse is the API representation of an organizer
type ProfileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	PayoutKey string    `json:"payout_key,omitempty"`
	PlanTier  string    `json:"plan_tier"`
	CreatedAt time.Time `json:"created_at"`
}

// NewProfileResponse maps a domain organizer to its API representation
func NewProfileResponse(o *domain.Organizer) *ProfileResponse {
	return &ProfileResponse{
		ID:        o.ID,
		Name:      o.Name,
		Email:     o.Email,
		PayoutKey: o.PayoutKey,
		PlanTier:  o.PlanTier,
		CreatedAt: o.CreatedAt,
	}
}

// UsageSummary reports an organizer's resource usage against plan limits
type UsageSummary struct {
	PlanTier          string `json:"plan_tier"`
	RaffleCount       int    `json:"raffle_count"`
	MaxRaffles        int    `json:"max_raffles"`
	CampaignCount     int    `json:"campaign_count"`
	MaxCampaigns      int    `json:"max_campaigns"`
	MaxSlotsPerRaffle int    `json:"max_slots_per_raffle"`
}

// BuyerTicket is one entry in the public ticket lookup
type BuyerTicket struct {
	Kind     string `json:"kind"` // raffle, campaign
	ItemID   string `json:"item_id"`
	Title    string `json:"title"`
	Number   int    `json:"number,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
	Status   string `json:"status"`
	IsWinner bool   `json:"is_winner,omitempty"`
}

// BuyerTicketsResponse is the public lookup result for a buyer identity
type BuyerTicketsResponse struct {
	Tickets []*BuyerTicket `json:"tickets"`
}

// LookupRequest is the public ticket lookup payload
type LookupRequest struct {
	TaxID string `json:"tax_id" binding:"required,min=11,max=14"`
	Phone string `json:"phone" binding:"required,min=8,max=20"`
}
