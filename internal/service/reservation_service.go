package service

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/rifahub/backend/internal/domain"
	"github.com/rifahub/backend/internal/repository"
	"github.com/rifahub/backend/pkg/logger"
	"github.com/rifahub/backend/pkg/telemetry"
)

type reservationService struct {
	slotRepo   repository.SlotRepository
	raffleRepo repository.RaffleRepository
	allocator  *Allocator
	holdTTL    time.Duration
	maxRetries int
	log        *logger.Logger
}

// NewReservationService creates the reservation engine. holdTTL is how long
// a reservation may sit unpaid before the sweeper reclaims it; maxRetries
// bounds auto-allocation attempts when commits race.
func NewReservationService(
	slotRepo repository.SlotRepository,
	raffleRepo repository.RaffleRepository,
	holdTTL time.Duration,
	maxRetries int,
	log *logger.Logger,
) ReservationService {
	return &reservationService{
		slotRepo:   slotRepo,
		raffleRepo: raffleRepo,
		allocator:  NewAllocator(slotRepo),
		holdTTL:    holdTTL,
		maxRetries: maxRetries,
		log:        log,
	}
}

func (s *reservationService) activeRaffle(ctx context.Context, raffleID string) (*domain.Raffle, error) {
	raffle, err := s.raffleRepo.GetByID(ctx, raffleID)
	if err != nil {
		return nil, err
	}
	if raffle == nil {
		return nil, domain.ErrRaffleNotFound
	}
	if raffle.Status != domain.RaffleStatusActive {
		return nil, domain.ErrAlreadyClosed
	}
	return raffle, nil
}

// Reserve attempts to hold the given numbers for holder, all-or-nothing.
// Each number is taken with a compare-and-set from available to reserved;
// if any number loses its race, every number won in this call is rolled
// back and the failed numbers are reported so the buyer can pick again.
func (s *reservationService) Reserve(ctx context.Context, raffleID string, numbers []int, holder domain.Holder) ([]int, error) {
	ctx, span := telemetry.StartSpan(ctx, "reservation.Reserve")
	defer span.End()

	raffle, err := s.activeRaffle(ctx, raffleID)
	if err != nil {
		return nil, err
	}

	proposed, err := s.allocator.ProposeExplicit(raffle.TotalSlots, numbers)
	if err != nil {
		return nil, err
	}

	won, unavailable, err := s.reserveBatch(ctx, raffleID, proposed, holder)
	if err != nil {
		s.rollbackReserved(ctx, raffleID, won, holder)
		return nil, err
	}
	if len(unavailable) > 0 {
		s.rollbackReserved(ctx, raffleID, won, holder)
		return nil, &domain.SlotsUnavailableError{Numbers: unavailable}
	}

	s.log.WithContext(ctx).Info("slots reserved",
		zap.String("raffle_id", raffleID),
		zap.Ints("numbers", proposed),
		zap.String("holder", holder.Key()),
	)
	return proposed, nil
}

// ReserveAuto reserves quantity numbers chosen by the allocator. When a
// proposal loses a commit race the lost numbers are excluded and the
// allocator is asked again, up to maxRetries attempts.
func (s *reservationService) ReserveAuto(ctx context.Context, raffleID string, quantity int, holder domain.Holder) ([]int, error) {
	ctx, span := telemetry.StartSpan(ctx, "reservation.ReserveAuto")
	defer span.End()

	raffle, err := s.activeRaffle(ctx, raffleID)
	if err != nil {
		return nil, err
	}

	exclude := make(map[int]struct{})
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		proposed, err := s.allocator.ProposeAuto(ctx, raffleID, raffle.TotalSlots, quantity, exclude)
		if err != nil {
			return nil, err
		}

		numbers, err := s.Reserve(ctx, raffleID, proposed, holder)
		if err == nil {
			return numbers, nil
		}

		var unavail *domain.SlotsUnavailableError
		if !errors.As(err, &unavail) {
			return nil, err
		}
		for _, n := range unavail.Numbers {
			exclude[n] = struct{}{}
		}
		s.log.WithContext(ctx).Debug("auto allocation lost race, retrying",
			zap.String("raffle_id", raffleID),
			zap.Int("attempt", attempt),
			zap.Ints("lost", unavail.Numbers),
		)
	}
	return nil, domain.ErrInsufficientInventory
}

// reserveBatch CASes each number to reserved. Returns the numbers won by
// this call and the numbers found unavailable. A number already reserved
// by the same holder counts as won elsewhere but is NOT added to won, so a
// retried request never rolls back its own earlier success.
func (s *reservationService) reserveBatch(ctx context.Context, raffleID string, numbers []int, holder domain.Holder) (won, unavailable []int, err error) {
	cas := repository.SlotCAS{
		ExpectedStatus: domain.SlotStatusAvailable,
		NewStatus:      domain.SlotStatusReserved,
		NewHolder:      &holder,
	}
	for _, n := range numbers {
		ok, casErr := s.slotRepo.CompareAndSetStatus(ctx, raffleID, n, cas)
		if casErr != nil {
			return won, unavailable, casErr
		}
		if ok {
			won = append(won, n)
			continue
		}
		slot, getErr := s.slotRepo.GetSlot(ctx, raffleID, n)
		if getErr != nil {
			return won, unavailable, getErr
		}
		if slot == nil {
			return won, unavailable, domain.ErrSlotNotFound
		}
		if slot.Status == domain.SlotStatusReserved && slot.Holder != nil && slot.Holder.Equal(holder) {
			// Same holder retrying an earlier partial success.
			continue
		}
		unavailable = append(unavailable, n)
	}
	return won, unavailable, nil
}

// rollbackReserved releases only the numbers this call reserved, guarded
// by a holder predicate so a concurrent expiry-and-rebuy by someone else
// is never clobbered.
func (s *reservationService) rollbackReserved(ctx context.Context, raffleID string, numbers []int, holder domain.Holder) {
	cas := repository.SlotCAS{
		ExpectedStatus: domain.SlotStatusReserved,
		ExpectedHolder: &holder,
		NewStatus:      domain.SlotStatusAvailable,
	}
	for _, n := range numbers {
		if _, err := s.slotRepo.CompareAndSetStatus(ctx, raffleID, n, cas); err != nil {
			s.log.WithContext(ctx).Error("rollback failed, slot left for sweeper",
				zap.String("raffle_id", raffleID),
				zap.Int("number", n),
				zap.Error(err),
			)
		}
	}
}

// Confirm marks the holder's reserved numbers as paid. Safe to call more
// than once: already-confirmed numbers held by the same buyer are no-ops,
// so webhook redelivery cannot fail a payment that already settled.
func (s *reservationService) Confirm(ctx context.Context, raffleID string, numbers []int, holder domain.Holder) error {
	ctx, span := telemetry.StartSpan(ctx, "reservation.Confirm")
	defer span.End()

	cas := repository.SlotCAS{
		ExpectedStatus: domain.SlotStatusReserved,
		ExpectedHolder: &holder,
		NewStatus:      domain.SlotStatusConfirmed,
		NewHolder:      &holder,
	}
	for _, n := range numbers {
		ok, err := s.casWithRetry(ctx, raffleID, n, cas)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		slot, err := s.slotRepo.GetSlot(ctx, raffleID, n)
		if err != nil {
			return err
		}
		if slot == nil {
			return domain.ErrSlotNotFound
		}
		if slot.Status == domain.SlotStatusConfirmed && slot.Holder != nil && slot.Holder.Equal(holder) {
			continue
		}
		return domain.ErrHolderMismatch
	}

	s.log.WithContext(ctx).Info("slots confirmed",
		zap.String("raffle_id", raffleID),
		zap.Ints("numbers", numbers),
		zap.String("holder", holder.Key()),
	)
	return nil
}

// Release returns numbers to the pool after a rejected or cancelled
// payment. Idempotent: an already-available number is a no-op, and so is a
// number whose hold expired and was re-reserved by another buyer in the
// meantime; the original holder's claim is moot either way.
func (s *reservationService) Release(ctx context.Context, raffleID string, numbers []int, holder domain.Holder) error {
	ctx, span := telemetry.StartSpan(ctx, "reservation.Release")
	defer span.End()

	for _, n := range numbers {
		released := false
		for _, from := range []string{domain.SlotStatusReserved, domain.SlotStatusConfirmed} {
			cas := repository.SlotCAS{
				ExpectedStatus: from,
				ExpectedHolder: &holder,
				NewStatus:      domain.SlotStatusAvailable,
			}
			ok, err := s.casWithRetry(ctx, raffleID, n, cas)
			if err != nil {
				return err
			}
			if ok {
				released = true
				break
			}
		}
		if released {
			continue
		}
		slot, err := s.slotRepo.GetSlot(ctx, raffleID, n)
		if err != nil {
			return err
		}
		if slot == nil {
			return domain.ErrSlotNotFound
		}
		if slot.Status == domain.SlotStatusAvailable {
			continue
		}
		// Held by a different buyer: the hold expired, the sweeper
		// reclaimed it, and someone else took the number. There is
		// nothing left to give back.
		s.log.WithContext(ctx).Warn("release skipped, slot now held by another buyer",
			zap.String("raffle_id", raffleID),
			zap.Int("number", n),
		)
	}

	s.log.WithContext(ctx).Info("slots released",
		zap.String("raffle_id", raffleID),
		zap.Ints("numbers", numbers),
	)
	return nil
}

// ReleaseExpired sweeps reservations older than the hold TTL back to
// available, up to batchSize, returning how many it reclaimed. A slot that
// got confirmed between the scan and the sweep loses its CAS and is left
// alone.
func (s *reservationService) ReleaseExpired(ctx context.Context, batchSize int) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "reservation.ReleaseExpired")
	defer span.End()

	cutoff := time.Now().Add(-s.holdTTL)
	expired, err := s.slotRepo.ListExpiredReservations(ctx, cutoff, batchSize)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, slot := range expired {
		cas := repository.SlotCAS{
			ExpectedStatus: domain.SlotStatusReserved,
			ExpectedHolder: slot.Holder,
			NewStatus:      domain.SlotStatusAvailable,
		}
		ok, err := s.slotRepo.CompareAndSetStatus(ctx, slot.RaffleID, slot.Number, cas)
		if err != nil {
			s.log.WithContext(ctx).Error("expiry sweep failed for slot",
				zap.String("raffle_id", slot.RaffleID),
				zap.Int("number", slot.Number),
				zap.Error(err),
			)
			continue
		}
		if ok {
			released++
		}
	}
	return released, nil
}

// casWithRetry retries a single compare-and-set on transient storage
// errors. Only used for idempotent transitions (confirm, release), where
// a duplicate apply is harmless.
func (s *reservationService) casWithRetry(ctx context.Context, raffleID string, number int, cas repository.SlotCAS) (bool, error) {
	op := func() (bool, error) {
		return s.slotRepo.CompareAndSetStatus(ctx, raffleID, number, cas)
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(3),
	)
}
