package domain

import "time"

// Raffle represents a numbered prize drawing with a fixed pool of slots
type Raffle struct {
	ID            string     `json:"id"`
	OrganizerID   string     `json:"organizer_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	ImageURL      string     `json:"image_url"`
	TicketPrice   int64      `json:"ticket_price"` // minor currency units (centavos)
	TotalSlots    int        `json:"total_slots"`
	Status        string     `json:"status"` // active, closed
	WinningNumber *int       `json:"winning_number,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
}

// Raffle status constants
const (
	RaffleStatusActive = "active"
	RaffleStatusClosed = "closed"
)

// Slot is one purchasable ticket number inside a raffle. Exactly one Slot
// exists per (raffle, number) pair; numbers run 1..TotalSlots.
type Slot struct {
	RaffleID   string     `json:"raffle_id"`
	Number     int        `json:"number"`
	Status     string     `json:"status"` // available, reserved, confirmed
	Holder     *Holder    `json:"holder,omitempty"`
	IsWinner   bool       `json:"is_winner"`
	ReservedAt *time.Time `json:"reserved_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Slot status constants
const (
	SlotStatusAvailable = "available"
	SlotStatusReserved  = "reserved"
	SlotStatusConfirmed = "confirmed"
)

// Holder identifies the buyer holding a slot or pledge. The engine treats
// these as opaque strings; the tax ID + phone pair is what the public
// lookup matches on.
type Holder struct {
	Name  string `json:"name"`
	TaxID string `json:"tax_id"` // CPF
	Phone string `json:"phone"`
}

// Key returns the identity used to compare holders. Name is display-only
// and deliberately excluded.
func (h Holder) Key() string {
	return h.TaxID + "|" + h.Phone
}

// Equal reports whether two holders are the same buyer
func (h Holder) Equal(other Holder) bool {
	return h.Key() == other.Key()
}
