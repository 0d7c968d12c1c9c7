package dto

import (
	"time"

	"github.com/rifahub/backend/internal/domain"
)

// CreateRaffleRequest is the payload for creating a raffle
type CreateRaffleRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=120"`
	Description string `json:"description" binding:"max=2000"`
	ImageURL    string `json:"image_url" binding:"omitempty,url"`
	TicketPrice int64  `json:"ticket_price" binding:"required,gt=0"`
	TotalSlots  int    `json:"total_slots" binding:"required,gt=0"`
}

// CloseRaffleRequest is the payload for closing a raffle.
// Either winning_number or seed must be provided.
type CloseRaffleRequest struct {
	// WinningNumber closes with an explicitly chosen confirmed slot
	WinningNumber *int `json:"winning_number,omitempty"`
	// Seed selects a winner uniformly among confirmed slots; supplying
	// the seed keeps the draw reproducible for audit.
	Seed *int64 `json:"seed,omitempty"`
}

// RaffleResponse is the API representation of a raffle
type RaffleResponse struct {
	ID            string     `json:"id"`
	OrganizerID   string     `json:"organizer_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	TicketPrice   int64      `json:"ticket_price"`
	TotalSlots    int        `json:"total_slots"`
	Status        string     `json:"status"`
	WinningNumber *int       `json:"winning_number,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
}

// NewRaffleResponse maps a domain raffle to its API representation
func NewRaffleResponse(r *domain.Raffle) *RaffleResponse {
	return &RaffleResponse{
		ID:            r.ID,
		OrganizerID:   r.OrganizerID,
		Title:         r.Title,
		Description:   r.Description,
		ImageURL:      r.ImageURL,
		TicketPrice:   r.TicketPrice,
		TotalSlots:    r.TotalSlots,
		Status:        r.Status,
		WinningNumber: r.WinningNumber,
		CreatedAt:     r.CreatedAt,
		ClosedAt:      r.ClosedAt,
	}
}

// SlotResponse is the API representation of a slot. Holder details are
// only exposed on organizer-facing endpoints.
type SlotResponse struct {
	Number     int    `json:"number"`
	Status     string `json:"status"`
	HolderName string `json:"holder_name,omitempty"`
	IsWinner   bool   `json:"is_winner,omitempty"`
}

// NewSlotResponse maps a domain slot to its API representation
func NewSlotResponse(s *domain.Slot) *SlotResponse {
	resp := &SlotResponse{
		Number:   s.Number,
		Status:   s.Status,
		IsWinner: s.IsWinner,
	}
	if s.Holder != nil {
		resp.HolderName = s.Holder.Name
	}
	return resp
}
