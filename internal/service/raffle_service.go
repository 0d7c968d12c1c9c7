package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rifahub/backend/internal/domain"
	"github.com/rifahub/backend/internal/dto"
	"github.com/rifahub/backend/internal/repository"
	"github.com/rifahub/backend/pkg/logger"
	"github.com/rifahub/backend/pkg/telemetry"
)

// WinnerMethod selects how the winning number of a close is chosen.
// Exactly one of the fields must be set.
type WinnerMethod struct {
	// Explicit names a confirmed number directly
	Explicit *int
	// RandomSeed draws uniformly among confirmed numbers using the given
	// seed, so the draw can be replayed for audit.
	RandomSeed *int64
}

type raffleService struct {
	raffleRepo repository.RaffleRepository
	slotRepo   repository.SlotRepository
	quota      QuotaService
	log        *logger.Logger
}

// NewRaffleService creates a new RaffleService
func NewRaffleService(
	raffleRepo repository.RaffleRepository,
	slotRepo repository.SlotRepository,
	quota QuotaService,
	log *logger.Logger,
) RaffleService {
	return &raffleService{
		raffleRepo: raffleRepo,
		slotRepo:   slotRepo,
		quota:      quota,
		log:        log,
	}
}

func (s *raffleService) CreateRaffle(ctx context.Context, organizerID string, req *dto.CreateRaffleRequest) (*domain.Raffle, error) {
	ctx, span := telemetry.StartSpan(ctx, "raffle.Create")
	defer span.End()

	if err := s.quota.CanCreateRaffle(ctx, organizerID); err != nil {
		return nil, err
	}
	if err := s.quota.ValidateSlotCount(ctx, organizerID, req.TotalSlots); err != nil {
		return nil, err
	}

	now := time.Now()
	raffle := &domain.Raffle{
		ID:          uuid.New().String(),
		OrganizerID: organizerID,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		TicketPrice: req.TicketPrice,
		TotalSlots:  req.TotalSlots,
		Status:      domain.RaffleStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.raffleRepo.Create(ctx, raffle); err != nil {
		return nil, err
	}
	if err := s.slotRepo.CreateInventory(ctx, raffle.ID, req.TotalSlots); err != nil {
		// Leave the raffle row; inventory creation is retryable and the
		// raffle is unusable without slots either way.
		return nil, err
	}

	s.log.WithContext(ctx).Info("raffle created",
		zap.String("raffle_id", raffle.ID),
		zap.String("organizer_id", organizerID),
		zap.Int("total_slots", req.TotalSlots),
	)
	return raffle, nil
}

func (s *raffleService) GetRaffle(ctx context.Context, id string) (*domain.Raffle, error) {
	raffle, err := s.raffleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if raffle == nil {
		return nil, domain.ErrRaffleNotFound
	}
	return raffle, nil
}

func (s *raffleService) GetRaffleSlots(ctx context.Context, id string) ([]*domain.Slot, error) {
	if _, err := s.GetRaffle(ctx, id); err != nil {
		return nil, err
	}
	return s.slotRepo.ListByRaffle(ctx, id)
}

func (s *raffleService) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Raffle, error) {
	return s.raffleRepo.ListByOrganizer(ctx, organizerID)
}

func (s *raffleService) ListActive(ctx context.Context, limit, offset int) ([]*domain.Raffle, int, error) {
	return s.raffleRepo.ListActive(ctx, limit, offset)
}

// CloseRaffle ends an active raffle and records the winner. The winning
// number must be a confirmed (paid) slot; a reserved or available number
// is rejected rather than silently accepted.
func (s *raffleService) CloseRaffle(ctx context.Context, organizerID, raffleID string, method WinnerMethod) (*domain.Raffle, error) {
	ctx, span := telemetry.StartSpan(ctx, "raffle.Close")
	defer span.End()

	raffle, err := s.GetRaffle(ctx, raffleID)
	if err != nil {
		return nil, err
	}
	if raffle.OrganizerID != organizerID {
		return nil, domain.ErrNotOwner
	}
	if raffle.Status != domain.RaffleStatusActive {
		return nil, domain.ErrAlreadyClosed
	}

	confirmed, err := s.slotRepo.ListConfirmedNumbers(ctx, raffleID)
	if err != nil {
		return nil, err
	}
	if len(confirmed) == 0 {
		return nil, domain.ErrNoEligibleSlots
	}

	winner, err := pickWinner(confirmed, method)
	if err != nil {
		return nil, err
	}

	closedAt := time.Now()
	closed, err := s.raffleRepo.Close(ctx, raffleID, winner, closedAt)
	if err != nil {
		return nil, err
	}
	if !closed {
		// Lost the close race to a concurrent request.
		return nil, domain.ErrAlreadyClosed
	}
	if err := s.slotRepo.SetWinner(ctx, raffleID, winner); err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("raffle closed",
		zap.String("raffle_id", raffleID),
		zap.Int("winning_number", winner),
	)

	raffle.Status = domain.RaffleStatusClosed
	raffle.WinningNumber = &winner
	raffle.ClosedAt = &closedAt
	return raffle, nil
}

// pickWinner resolves the winning number from the method. confirmed must
// be sorted ascending so seeded draws are deterministic.
func pickWinner(confirmed []int, method WinnerMethod) (int, error) {
	switch {
	case method.Explicit != nil:
		for _, n := range confirmed {
			if n == *method.Explicit {
				return n, nil
			}
		}
		return 0, fmt.Errorf("%w: number %d is not a paid slot", domain.ErrInvalidWinner, *method.Explicit)
	case method.RandomSeed != nil:
		rng := rand.New(rand.NewSource(*method.RandomSeed))
		return confirmed[rng.Intn(len(confirmed))], nil
	default:
		return 0, fmt.Errorf("%w: no winner selection method given", domain.ErrInvalidWinner)
	}
}

func (s *raffleService) DeleteRaffle(ctx context.Context, organizerID, raffleID string) error {
	raffle, err := s.GetRaffle(ctx, raffleID)
	if err != nil {
		return err
	}
	if raffle.OrganizerID != organizerID {
		return domain.ErrNotOwner
	}
	if err := s.slotRepo.DeleteByRaffle(ctx, raffleID); err != nil {
		return err
	}
	return s.raffleRepo.Delete(ctx, raffleID)
}
