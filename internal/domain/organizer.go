package domain

import "time"

// Organizer is an account that creates raffles and campaigns
type Organizer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	PayoutKey string    `json:"payout_key"` // PIX destination key
	PlanTier  string    `json:"plan_tier"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Plan tier constants
const (
	PlanTierBasic    = "basic"
	PlanTierStandard = "standard"
	PlanTierPremium  = "premium"
)

// PlanLimits bounds how much inventory an organizer may create. It is a
// pure function of the plan tier and never persisted.
type PlanLimits struct {
	MaxRaffles        int `json:"max_raffles"`
	MaxCampaigns      int `json:"max_campaigns"`
	MaxSlotsPerRaffle int `json:"max_slots_per_raffle"`
}

// LimitsForTier returns the plan limits for a tier. Unknown tiers get a
// zero quota rather than an error, matching how unpaid accounts behave.
func LimitsForTier(tier string) PlanLimits {
	switch tier {
	case PlanTierBasic:
		return PlanLimits{MaxRaffles: 2, MaxCampaigns: 2, MaxSlotsPerRaffle: 100000}
	case PlanTierStandard:
		return PlanLimits{MaxRaffles: 5, MaxCampaigns: 5, MaxSlotsPerRaffle: 500000}
	case PlanTierPremium:
		return PlanLimits{MaxRaffles: 10, MaxCampaigns: 10, MaxSlotsPerRaffle: 1000000}
	default:
		return PlanLimits{}
	}
}
