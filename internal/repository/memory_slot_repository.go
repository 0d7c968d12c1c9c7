package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rifahub/backend/internal/domain"
)

// MemorySlotRepository is an in-memory implementation of SlotRepository for
// testing. A single mutex gives the same per-slot linearizability the
// Postgres conditional UPDATE provides.
type MemorySlotRepository struct {
	mu    sync.Mutex
	slots map[string]map[int]*domain.Slot // raffleID -> number -> slot
}

// NewMemorySlotRepository creates a new in-memory slot store
func NewMemorySlotRepository() *MemorySlotRepository {
	return &MemorySlotRepository{
		slots: make(map[string]map[int]*domain.Slot),
	}
}

// CreateInventory creates the full slot set for a raffle
func (s *MemorySlotRepository) CreateInventory(ctx context.Context, raffleID string, totalSlots int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.slots[raffleID]; exists {
		return domain.ErrAlreadyInitialized
	}

	inventory := make(map[int]*domain.Slot, totalSlots)
	now := time.Now()
	for n := 1; n <= totalSlots; n++ {
		inventory[n] = &domain.Slot{
			RaffleID:  raffleID,
			Number:    n,
			Status:    domain.SlotStatusAvailable,
			UpdatedAt: now,
		}
	}
	s.slots[raffleID] = inventory
	return nil
}

// GetOccupied returns the numbers not currently available
func (s *MemorySlotRepository) GetOccupied(ctx context.Context, raffleID string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var numbers []int
	for n, slot := range s.slots[raffleID] {
		if slot.Status != domain.SlotStatusAvailable {
			numbers = append(numbers, n)
		}
	}
	sort.Ints(numbers)
	return numbers, nil
}

// CompareAndSetStatus atomically applies a conditional slot transition
func (s *MemorySlotRepository) CompareAndSetStatus(ctx context.Context, raffleID string, number int, cas SlotCAS) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[raffleID][number]
	if !ok {
		return false, nil
	}

	if slot.Status != cas.ExpectedStatus {
		return false, nil
	}
	if cas.ExpectedHolder != nil {
		if slot.Holder == nil || !slot.Holder.Equal(*cas.ExpectedHolder) {
			return false, nil
		}
	}

	slot.Status = cas.NewStatus
	if cas.NewHolder != nil {
		holder := *cas.NewHolder
		slot.Holder = &holder
	} else {
		slot.Holder = nil
	}
	if cas.NewStatus == domain.SlotStatusReserved {
		now := time.Now()
		slot.ReservedAt = &now
	} else {
		slot.ReservedAt = nil
	}
	slot.UpdatedAt = time.Now()

	return true, nil
}

// GetSlot retrieves a single slot
func (s *MemorySlotRepository) GetSlot(ctx context.Context, raffleID string, number int) (*domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[raffleID][number]
	if !ok {
		return nil, nil
	}
	return s.copySlot(slot), nil
}

// ListByRaffle retrieves every slot of a raffle ordered by number
func (s *MemorySlotRepository) ListByRaffle(ctx context.Context, raffleID string) ([]*domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inventory := s.slots[raffleID]
	numbers := make([]int, 0, len(inventory))
	for n := range inventory {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	slots := make([]*domain.Slot, 0, len(numbers))
	for _, n := range numbers {
		slots = append(slots, s.copySlot(inventory[n]))
	}
	return slots, nil
}

// ListConfirmedNumbers returns confirmed numbers ordered ascending
func (s *MemorySlotRepository) ListConfirmedNumbers(ctx context.Context, raffleID string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var numbers []int
	for n, slot := range s.slots[raffleID] {
		if slot.Status == domain.SlotStatusConfirmed {
			numbers = append(numbers, n)
		}
	}
	sort.Ints(numbers)
	return numbers, nil
}

// ListExpiredReservations returns reservations older than the cutoff
func (s *MemorySlotRepository) ListExpiredReservations(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []*domain.Slot
	for _, inventory := range s.slots {
		for _, slot := range inventory {
			if slot.Status == domain.SlotStatusReserved && slot.ReservedAt != nil && slot.ReservedAt.Before(cutoff) {
				expired = append(expired, s.copySlot(slot))
			}
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].ReservedAt.Before(*expired[j].ReservedAt)
	})
	if len(expired) > limit {
		expired = expired[:limit]
	}
	return expired, nil
}

// SetWinner flags a slot as the raffle winner
func (s *MemorySlotRepository) SetWinner(ctx context.Context, raffleID string, number int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[raffleID][number]
	if !ok {
		return domain.ErrSlotNotFound
	}
	slot.IsWinner = true
	slot.UpdatedAt = time.Now()
	return nil
}

// FindByHolder returns all slots held by a buyer identity
func (s *MemorySlotRepository) FindByHolder(ctx context.Context, taxID, phone string) ([]*domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.Holder{TaxID: taxID, Phone: phone}.Key()
	var found []*domain.Slot
	for _, inventory := range s.slots {
		for _, slot := range inventory {
			if slot.Holder != nil && slot.Holder.Key() == key {
				found = append(found, s.copySlot(slot))
			}
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].RaffleID != found[j].RaffleID {
			return found[i].RaffleID < found[j].RaffleID
		}
		return found[i].Number < found[j].Number
	})
	return found, nil
}

// CountByStatus counts a raffle's slots in the given status
func (s *MemorySlotRepository) CountByStatus(ctx context.Context, raffleID, status string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, slot := range s.slots[raffleID] {
		if slot.Status == status {
			count++
		}
	}
	return count, nil
}

// DeleteByRaffle removes all slots of a raffle
func (s *MemorySlotRepository) DeleteByRaffle(ctx context.Context, raffleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.slots, raffleID)
	return nil
}

func (s *MemorySlotRepository) copySlot(slot *domain.Slot) *domain.Slot {
	copied := *slot
	if slot.Holder != nil {
		holder := *slot.Holder
		copied.Holder = &holder
	}
	if slot.ReservedAt != nil {
		at := *slot.ReservedAt
		copied.ReservedAt = &at
	}
	return &copied
}
