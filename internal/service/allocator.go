package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rifahub/backend/internal/domain"
	"github.com/rifahub/backend/internal/repository"
)

// Allocator proposes candidate slot numbers for a reservation attempt.
// Its proposals are hints only: availability is authoritative at commit
// time, inside the reservation's compare-and-set, never here. Checking
// availability in the allocator would reintroduce the check-then-reserve
// race this design exists to remove.
type Allocator struct {
	slotRepo repository.SlotRepository
}

// NewAllocator creates a new Allocator
func NewAllocator(slotRepo repository.SlotRepository) *Allocator {
	return &Allocator{slotRepo: slotRepo}
}

// ProposeExplicit validates buyer-chosen numbers against the raffle range
// and deduplicates them. It deliberately does not check availability.
func (a *Allocator) ProposeExplicit(totalSlots int, numbers []int) ([]int, error) {
	if len(numbers) == 0 {
		return nil, fmt.Errorf("no numbers requested")
	}

	seen := make(map[int]struct{}, len(numbers))
	proposed := make([]int, 0, len(numbers))
	for _, n := range numbers {
		if n < 1 || n > totalSlots {
			return nil, fmt.Errorf("number %d out of range [1, %d]", n, totalSlots)
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		proposed = append(proposed, n)
	}
	sort.Ints(proposed)
	return proposed, nil
}

// ProposeAuto picks the lowest quantity numbers that the occupied hint and
// the exclude set do not rule out. Numbers in exclude are ones the caller
// already learned are taken from a lost commit race.
func (a *Allocator) ProposeAuto(ctx context.Context, raffleID string, totalSlots, quantity int, exclude map[int]struct{}) ([]int, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	occupied, err := a.slotRepo.GetOccupied(ctx, raffleID)
	if err != nil {
		return nil, err
	}

	taken := make(map[int]struct{}, len(occupied)+len(exclude))
	for _, n := range occupied {
		taken[n] = struct{}{}
	}
	for n := range exclude {
		taken[n] = struct{}{}
	}

	proposed := make([]int, 0, quantity)
	for n := 1; n <= totalSlots && len(proposed) < quantity; n++ {
		if _, ok := taken[n]; ok {
			continue
		}
		proposed = append(proposed, n)
	}

	if len(proposed) < quantity {
		return nil, domain.ErrInsufficientInventory
	}
	return proposed, nil
}
