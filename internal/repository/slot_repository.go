package repository

import (
	"context"
	"time"

	"github.com/rifahub/backend/internal/domain"
)

// SlotCAS describes one atomic conditional transition of a slot. The update
// applies only when the current status (and holder, when ExpectedHolder is
// set) matches; this is the sole serialization point for slot state.
type SlotCAS struct {
	ExpectedStatus string
	// ExpectedHolder, when non-nil, additionally requires the current
	// holder to match. Used by confirm and rollback so a concurrent
	// claimant's slot is never clobbered.
	ExpectedHolder *domain.Holder
	NewStatus      string
	// NewHolder is recorded on the slot; nil clears the holder, which is
	// required when transitioning back to available.
	NewHolder *domain.Holder
}

// SlotRepository is the durable inventory store for raffle ticket numbers
type SlotRepository interface {
	// CreateInventory creates totalSlots available slots numbered
	// 1..totalSlots atomically. Returns domain.ErrAlreadyInitialized when
	// inventory already exists for the raffle.
	CreateInventory(ctx context.Context, raffleID string, totalSlots int) error
	// GetOccupied returns the numbers not currently available. This is a
	// hint for the allocator; only CompareAndSetStatus is authoritative.
	GetOccupied(ctx context.Context, raffleID string) ([]int, error)
	// CompareAndSetStatus atomically applies the transition and reports
	// whether the precondition held.
	CompareAndSetStatus(ctx context.Context, raffleID string, number int, cas SlotCAS) (bool, error)
	// GetSlot retrieves a single slot, nil when it does not exist
	GetSlot(ctx context.Context, raffleID string, number int) (*domain.Slot, error)
	// ListByRaffle retrieves every slot of a raffle ordered by number
	ListByRaffle(ctx context.Context, raffleID string) ([]*domain.Slot, error)
	// ListConfirmedNumbers returns the confirmed numbers ordered ascending
	ListConfirmedNumbers(ctx context.Context, raffleID string) ([]int, error)
	// ListExpiredReservations returns slots reserved before the cutoff,
	// oldest first, at most limit entries.
	ListExpiredReservations(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Slot, error)
	// SetWinner flags exactly one slot as the raffle winner
	SetWinner(ctx context.Context, raffleID string, number int) error
	// FindByHolder returns all slots held by the given buyer identity,
	// any raffle, reserved or confirmed.
	FindByHolder(ctx context.Context, taxID, phone string) ([]*domain.Slot, error)
	// CountByStatus counts a raffle's slots in the given status
	CountByStatus(ctx context.Context, raffleID, status string) (int, error)
	// DeleteByRaffle removes all slots of a raffle (owner cascade delete)
	DeleteByRaffle(ctx context.Context, raffleID string) error
}
