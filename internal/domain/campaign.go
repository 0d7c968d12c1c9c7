package domain

import "time"

// Campaign represents an unlimited-entry fundraiser. Buyers acquire an
// arbitrary quantity of unnumbered units instead of picking slot numbers.
type Campaign struct {
	ID          string    `json:"id"`
	OrganizerID string    `json:"organizer_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	UnitPrice   int64     `json:"unit_price"` // minor currency units
	Mode        string    `json:"mode"`       // simple, combo
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Campaign mode constants
const (
	CampaignModeSimple = "simple"
	CampaignModeCombo  = "combo"
)

// Pledge is a buyer's purchase of N units of a campaign. Many pledges can
// coexist per buyer; there is no uniqueness constraint.
type Pledge struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	Quantity   int       `json:"quantity"`
	Holder     Holder    `json:"holder"`
	Status     string    `json:"status"` // awaiting_payment, paid, cancelled
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Pledge status constants. Paid and cancelled are terminal.
const (
	PledgeStatusAwaitingPayment = "awaiting_payment"
	PledgeStatusPaid            = "paid"
	PledgeStatusCancelled       = "cancelled"
)
