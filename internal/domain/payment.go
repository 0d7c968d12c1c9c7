package domain

import "time"

// Payment records one checkout handoff to the payment collaborator. The
// webhook adapter resolves the provider's reference back to this record to
// decide which slots to confirm or which pledge to mark paid.
type Payment struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`         // raffle, campaign
	ReferenceID string    `json:"reference_id"` // raffle or campaign ID
	Numbers     []int     `json:"numbers,omitempty"`
	PledgeID    string    `json:"pledge_id,omitempty"`
	Quantity    int       `json:"quantity,omitempty"`
	Holder      Holder    `json:"holder"`
	Amount      int64     `json:"amount"` // minor currency units
	Method      string    `json:"method"` // pix, card
	Status      string    `json:"status"` // pending, approved, rejected
	ProviderRef string    `json:"provider_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Payment kind constants
const (
	PaymentKindRaffle   = "raffle"
	PaymentKindCampaign = "campaign"
)

// Payment method constants
const (
	PaymentMethodPix  = "pix"
	PaymentMethodCard = "card"
)

// Payment status constants
const (
	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
)
