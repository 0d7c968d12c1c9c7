package dto

// BuyerInfo carries the buyer identity attached to reservations and pledges
type BuyerInfo struct {
	Name  string `json:"name" binding:"required,min=2,max=120"`
	TaxID string `json:"tax_id" binding:"required,min=11,max=14"`
	Phone string `json:"phone" binding:"required,min=8,max=20"`
}

// RaffleCheckoutRequest starts a checkout for raffle slots. When Numbers is
// empty the engine auto-picks Quantity lowest available numbers.
type RaffleCheckoutRequest struct {
	RaffleID string    `json:"raffle_id" binding:"required,uuid"`
	Numbers  []int     `json:"numbers,omitempty"`
	Quantity int       `json:"quantity,omitempty" binding:"omitempty,gt=0"`
	Method   string    `json:"method" binding:"required,oneof=pix card"`
	Buyer    BuyerInfo `json:"buyer" binding:"required"`
}

// CampaignCheckoutRequest starts a checkout for campaign units
type CampaignCheckoutRequest struct {
	CampaignID string    `json:"campaign_id" binding:"required,uuid"`
	Quantity   int       `json:"quantity" binding:"required,gt=0"`
	Method     string    `json:"method" binding:"required,oneof=pix card"`
	Buyer      BuyerInfo `json:"buyer" binding:"required"`
}

// CheckoutResponse reports the reserved inventory and where to pay for it
type CheckoutResponse struct {
	PaymentID   string `json:"payment_id"`
	Numbers     []int  `json:"numbers,omitempty"`
	PledgeID    string `json:"pledge_id,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
	Amount      int64  `json:"amount"`
	RedirectURL string `json:"redirect_url"`
}

// WebhookRequest is the normalized provider callback payload the webhook
// adapter hands to the engine after verifying the provider signature.
type WebhookRequest struct {
	EventID   string `json:"event_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Outcome   string `json:"outcome" binding:"required,oneof=approved rejected"`
}
