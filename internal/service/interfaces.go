package service

import (
	"context"

	"github.com/rifahub/backend/internal/domain"
	"github.com/rifahub/backend/internal/dto"
	"github.com/rifahub/backend/internal/repository"
)

// ReservationService moves slots through the reserve/confirm/release
// lifecycle. It is the only component allowed to change slot state.
type ReservationService interface {
	// Reserve claims the given numbers for a holder with all-or-nothing
	// semantics: on any contention the whole batch is rolled back and a
	// *domain.SlotsUnavailableError lists the contested numbers. Returns
	// the deduplicated, sorted numbers actually reserved.
	Reserve(ctx context.Context, raffleID string, numbers []int, holder domain.Holder) ([]int, error)
	// ReserveAuto picks and claims the lowest quantity available numbers,
	// retrying a bounded number of times when a pick loses the race.
	// Returns the numbers actually reserved.
	ReserveAuto(ctx context.Context, raffleID string, quantity int, holder domain.Holder) ([]int, error)
	// Confirm moves reserved numbers to confirmed after payment. Only the
	// reserving holder may confirm; repeated confirms are no-op successes.
	Confirm(ctx context.Context, raffleID string, numbers []int, holder domain.Holder) error
	// Release returns the holder's numbers to available. Releasing an
	// already-available number is a no-op success.
	Release(ctx context.Context, raffleID string, numbers []int, holder domain.Holder) error
	// ReleaseExpired releases reservations older than the hold TTL, at
	// most batchSize of them, and returns how many were released.
	ReleaseExpired(ctx context.Context, batchSize int) (int, error)
}

// QuotaService enforces plan-tier limits before inventory creation.
// These are advisory pre-checks; authoritative enforcement is the count
// at creation time, since plan tier can change between check and commit.
type QuotaService interface {
	CanCreateRaffle(ctx context.Context, organizerID string) error
	CanCreateCampaign(ctx context.Context, organizerID string) error
	ValidateSlotCount(ctx context.Context, organizerID string, requestedSlots int) error
	// Usage reports current counts against the organizer's plan limits
	Usage(ctx context.Context, organizerID string) (*dto.UsageSummary, error)
}

// RaffleService manages raffle lifecycle including inventory creation and
// the terminal close-with-winner transition.
type RaffleService interface {
	CreateRaffle(ctx context.Context, organizerID string, req *dto.CreateRaffleRequest) (*domain.Raffle, error)
	GetRaffle(ctx context.Context, id string) (*domain.Raffle, error)
	GetRaffleSlots(ctx context.Context, id string) ([]*domain.Slot, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Raffle, error)
	ListActive(ctx context.Context, limit, offset int) ([]*domain.Raffle, int, error)
	// CloseRaffle closes an active raffle and marks exactly one confirmed
	// slot as winner. Terminal and irreversible.
	CloseRaffle(ctx context.Context, organizerID, raffleID string, method WinnerMethod) (*domain.Raffle, error)
	DeleteRaffle(ctx context.Context, organizerID, raffleID string) error
}

// CampaignService manages campaigns and their pledges
type CampaignService interface {
	CreateCampaign(ctx context.Context, organizerID string, req *dto.CreateCampaignRequest) (*domain.Campaign, error)
	GetCampaign(ctx context.Context, id string) (*domain.Campaign, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Campaign, error)
	ListPublic(ctx context.Context, limit, offset int) ([]*domain.Campaign, int, error)
	CreatePledge(ctx context.Context, campaignID string, quantity int, holder domain.Holder) (*domain.Pledge, error)
	// MarkPledgePaid and CancelPledge are terminal and idempotent
	MarkPledgePaid(ctx context.Context, pledgeID string) error
	CancelPledge(ctx context.Context, pledgeID string) error
	TopBuyers(ctx context.Context, campaignID string, limit int) ([]*repository.BuyerRank, error)
	DeleteCampaign(ctx context.Context, organizerID, campaignID string) error
}

// CheckoutService hands reserved inventory off to the payment collaborator
// and applies webhook outcomes back onto it.
type CheckoutService interface {
	// StartRaffleCheckout reserves the requested numbers (or auto-picks
	// when none are given) and opens a checkout session for them.
	StartRaffleCheckout(ctx context.Context, req *dto.RaffleCheckoutRequest) (*dto.CheckoutResponse, error)
	// StartCampaignCheckout creates an awaiting-payment pledge and opens
	// a checkout session for it.
	StartCampaignCheckout(ctx context.Context, req *dto.CampaignCheckoutRequest) (*dto.CheckoutResponse, error)
	// ApplyPaymentOutcome maps a provider webhook outcome onto the
	// reservation engine. Safe under at-least-once delivery.
	ApplyPaymentOutcome(ctx context.Context, paymentID string, approved bool) error
	// ListPendingPayments returns the organizer's unsettled payments, for
	// manual settlement of out-of-band PIX transfers.
	ListPendingPayments(ctx context.Context, organizerID string) ([]*domain.Payment, error)
	// SettlePayment applies an outcome on behalf of the organizer owning
	// the raffle or campaign the payment belongs to.
	SettlePayment(ctx context.Context, organizerID, paymentID string, approved bool) error
}

// LookupService is the public, unauthenticated ticket lookup
type LookupService interface {
	// FindByBuyer returns all slots and pledges held by a tax-id + phone
	// pair, enriched with raffle/campaign titles.
	FindByBuyer(ctx context.Context, taxID, phone string) (*dto.BuyerTicketsResponse, error)
}

// OrganizerService manages organizer profiles
type OrganizerService interface {
	GetProfile(ctx context.Context, organizerID string) (*domain.Organizer, error)
	UpdateProfile(ctx context.Context, organizerID string, req *dto.UpdateProfileRequest) (*domain.Organizer, error)
}
