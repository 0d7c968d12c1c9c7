package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Precondition violations, never retried automatically
var (
	ErrAlreadyInitialized = errors.New("inventory already initialized for raffle")
	ErrAlreadyClosed      = errors.New("raffle already closed")
	ErrInvalidWinner      = errors.New("winning number does not reference a confirmed slot")
	ErrNoEligibleSlots    = errors.New("raffle has no confirmed slots")
	ErrRaffleNotFound     = errors.New("raffle not found")
	ErrCampaignNotFound   = errors.New("campaign not found")
	ErrPledgeNotFound     = errors.New("pledge not found")
	ErrOrganizerNotFound  = errors.New("organizer not found")
	ErrSlotNotFound       = errors.New("slot not found")
	ErrPaymentNotFound    = errors.New("payment not found")
)

// Contention and integrity outcomes
var (
	ErrInsufficientInventory = errors.New("not enough available slots")
	ErrHolderMismatch        = errors.New("slot is held by a different buyer")
	ErrQuotaExceeded         = errors.New("plan limit exceeded")
	ErrNotOwner              = errors.New("resource belongs to a different organizer")
)

// SlotsUnavailableError reports which numbers lost the race during a batch
// reserve. The whole batch has been rolled back when this is returned.
type SlotsUnavailableError struct {
	Numbers []int
}

func (e *SlotsUnavailableError) Error() string {
	parts := make([]string, len(e.Numbers))
	for i, n := range e.Numbers {
		parts[i] = strconv.Itoa(n)
	}
	return fmt.Sprintf("slots unavailable: %s", strings.Join(parts, ","))
}

// NumbersCSV returns the contested numbers as a comma-separated string for
// API responses.
func (e *SlotsUnavailableError) NumbersCSV() string {
	parts := make([]string, len(e.Numbers))
	for i, n := range e.Numbers {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
