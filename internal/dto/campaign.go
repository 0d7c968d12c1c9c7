package dto

import (
	"time"

	"github.com/rifahub/backend/internal/domain"
)

// CreateCampaignRequest is the payload for creating a campaign
type CreateCampaignRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=120"`
	Description string `json:"description" binding:"max=2000"`
	ImageURL    string `json:"image_url" binding:"omitempty,url"`
	UnitPrice   int64  `json:"unit_price" binding:"required,gt=0"`
	Mode        string `json:"mode" binding:"required,oneof=simple combo"`
	Featured    bool   `json:"featured"`
}

// CampaignResponse is the API representation of a campaign
type CampaignResponse struct {
	ID          string    `json:"id"`
	OrganizerID string    `json:"organizer_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	UnitPrice   int64     `json:"unit_price"`
	Mode        string    `json:"mode"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewCampaignResponse maps a domain campaign to its API representation
func NewCampaignResponse(c *domain.Campaign) *CampaignResponse {
	return &CampaignResponse{
		ID:          c.ID,
		OrganizerID: c.OrganizerID,
		Title:       c.Title,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		UnitPrice:   c.UnitPrice,
		Mode:        c.Mode,
		Featured:    c.Featured,
		CreatedAt:   c.CreatedAt,
	}
}

// PledgeResponse is the API representation of a pledge
type PledgeResponse struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	Quantity   int       `json:"quantity"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewPledgeResponse maps a domain pledge to its API representation
func NewPledgeResponse(p *domain.Pledge) *PledgeResponse {
	return &PledgeResponse{
		ID:         p.ID,
		CampaignID: p.CampaignID,
		Quantity:   p.Quantity,
		Status:     p.Status,
		CreatedAt:  p.CreatedAt,
	}
}
