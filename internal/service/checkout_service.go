package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rifahub/backend/internal/domain"
	"github.com/rifahub/backend/internal/dto"
	"github.com/rifahub/backend/internal/gateway"
	"github.com/rifahub/backend/internal/repository"
	"github.com/rifahub/backend/pkg/logger"
	"github.com/rifahub/backend/pkg/telemetry"
)

type checkoutService struct {
	paymentRepo  repository.PaymentRepository
	reservations ReservationService
	raffles      RaffleService
	campaigns    CampaignService
	gw           gateway.PaymentGateway
	log          *logger.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	paymentRepo repository.PaymentRepository,
	reservations ReservationService,
	raffles RaffleService,
	campaigns CampaignService,
	gw gateway.PaymentGateway,
	log *logger.Logger,
) CheckoutService {
	return &checkoutService{
		paymentRepo:  paymentRepo,
		reservations: reservations,
		raffles:      raffles,
		campaigns:    campaigns,
		gw:           gw,
		log:          log,
	}
}

func holderFromBuyer(b dto.BuyerInfo) domain.Holder {
	return domain.Holder{Name: b.Name, TaxID: b.TaxID, Phone: b.Phone}
}

// StartRaffleCheckout reserves the slots first, then opens the checkout.
// If the provider call fails the reservation is released immediately so
// the numbers do not sit locked until the sweeper finds them.
func (s *checkoutService) StartRaffleCheckout(ctx context.Context, req *dto.RaffleCheckoutRequest) (*dto.CheckoutResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "checkout.StartRaffle")
	defer span.End()

	raffle, err := s.raffles.GetRaffle(ctx, req.RaffleID)
	if err != nil {
		return nil, err
	}
	holder := holderFromBuyer(req.Buyer)

	var numbers []int
	if len(req.Numbers) > 0 {
		numbers, err = s.reservations.Reserve(ctx, req.RaffleID, req.Numbers, holder)
	} else {
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("either numbers or a positive quantity is required")
		}
		numbers, err = s.reservations.ReserveAuto(ctx, req.RaffleID, req.Quantity, holder)
	}
	if err != nil {
		return nil, err
	}

	amount := raffle.TicketPrice * int64(len(numbers))
	now := time.Now()
	payment := &domain.Payment{
		ID:          uuid.New().String(),
		Kind:        domain.PaymentKindRaffle,
		ReferenceID: req.RaffleID,
		Numbers:     numbers,
		Holder:      holder,
		Amount:      amount,
		Method:      req.Method,
		Status:      domain.PaymentStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		s.releaseQuietly(ctx, req.RaffleID, numbers, holder)
		return nil, err
	}

	session, err := s.openSession(ctx, payment, raffle.Title)
	if err != nil {
		s.releaseQuietly(ctx, req.RaffleID, numbers, holder)
		return nil, err
	}

	return &dto.CheckoutResponse{
		PaymentID:   payment.ID,
		Numbers:     numbers,
		Amount:      amount,
		RedirectURL: session.RedirectURL,
	}, nil
}

// StartCampaignCheckout creates the pledge, then opens the checkout. A
// failed provider call cancels the pledge.
func (s *checkoutService) StartCampaignCheckout(ctx context.Context, req *dto.CampaignCheckoutRequest) (*dto.CheckoutResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "checkout.StartCampaign")
	defer span.End()

	campaign, err := s.campaigns.GetCampaign(ctx, req.CampaignID)
	if err != nil {
		return nil, err
	}
	holder := holderFromBuyer(req.Buyer)

	pledge, err := s.campaigns.CreatePledge(ctx, req.CampaignID, req.Quantity, holder)
	if err != nil {
		return nil, err
	}

	amount := campaign.UnitPrice * int64(req.Quantity)
	now := time.Now()
	payment := &domain.Payment{
		ID:          uuid.New().String(),
		Kind:        domain.PaymentKindCampaign,
		ReferenceID: req.CampaignID,
		PledgeID:    pledge.ID,
		Quantity:    req.Quantity,
		Holder:      holder,
		Amount:      amount,
		Method:      req.Method,
		Status:      domain.PaymentStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		s.cancelQuietly(ctx, pledge.ID)
		return nil, err
	}

	session, err := s.openSession(ctx, payment, campaign.Title)
	if err != nil {
		s.cancelQuietly(ctx, pledge.ID)
		return nil, err
	}

	return &dto.CheckoutResponse{
		PaymentID:   payment.ID,
		PledgeID:    pledge.ID,
		Quantity:    req.Quantity,
		Amount:      amount,
		RedirectURL: session.RedirectURL,
	}, nil
}

func (s *checkoutService) openSession(ctx context.Context, payment *domain.Payment, title string) (*gateway.CheckoutSession, error) {
	session, err := s.gw.CreateCheckout(ctx, &gateway.CheckoutRequest{
		PaymentID:   payment.ID,
		Amount:      payment.Amount,
		Currency:    "brl",
		Method:      payment.Method,
		Description: title,
		BuyerName:   payment.Holder.Name,
		BuyerTaxID:  payment.Holder.TaxID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.paymentRepo.SetProviderRef(ctx, payment.ID, session.ProviderRef); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *checkoutService) releaseQuietly(ctx context.Context, raffleID string, numbers []int, holder domain.Holder) {
	if err := s.reservations.Release(ctx, raffleID, numbers, holder); err != nil {
		s.log.WithContext(ctx).Error("failed to release after aborted checkout, slots left for sweeper",
			zap.String("raffle_id", raffleID),
			zap.Ints("numbers", numbers),
			zap.Error(err),
		)
	}
}

func (s *checkoutService) cancelQuietly(ctx context.Context, pledgeID string) {
	if err := s.campaigns.CancelPledge(ctx, pledgeID); err != nil {
		s.log.WithContext(ctx).Error("failed to cancel pledge after aborted checkout",
			zap.String("pledge_id", pledgeID),
			zap.Error(err),
		)
	}
}

// ListPendingPayments returns the organizer's unsettled payments. This is
// the backing for the manual-settlement screen: organizers taking PIX
// transfers outside the gateway confirm those payments by hand.
func (s *checkoutService) ListPendingPayments(ctx context.Context, organizerID string) ([]*domain.Payment, error) {
	return s.paymentRepo.ListPendingByOrganizer(ctx, organizerID)
}

// SettlePayment applies an outcome manually. Only the organizer owning the
// underlying raffle or campaign may settle, and the settlement itself rides
// the same idempotent path the webhook uses.
func (s *checkoutService) SettlePayment(ctx context.Context, organizerID, paymentID string, approved bool) error {
	ctx, span := telemetry.StartSpan(ctx, "checkout.SettlePayment")
	defer span.End()

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		return domain.ErrPaymentNotFound
	}

	var ownerID string
	switch payment.Kind {
	case domain.PaymentKindRaffle:
		raffle, err := s.raffles.GetRaffle(ctx, payment.ReferenceID)
		if err != nil {
			return err
		}
		ownerID = raffle.OrganizerID
	case domain.PaymentKindCampaign:
		campaign, err := s.campaigns.GetCampaign(ctx, payment.ReferenceID)
		if err != nil {
			return err
		}
		ownerID = campaign.OrganizerID
	default:
		return fmt.Errorf("unknown payment kind %q", payment.Kind)
	}
	if ownerID != organizerID {
		return domain.ErrNotOwner
	}

	s.log.WithContext(ctx).Info("manual payment settlement",
		zap.String("payment_id", paymentID),
		zap.String("organizer_id", organizerID),
		zap.Bool("approved", approved),
	)
	return s.ApplyPaymentOutcome(ctx, paymentID, approved)
}

// ApplyPaymentOutcome maps a provider outcome onto the engine. The engine
// transition runs before the payment row flips so that a crash in between
// is healed by redelivery: every step tolerates being applied twice.
func (s *checkoutService) ApplyPaymentOutcome(ctx context.Context, paymentID string, approved bool) error {
	ctx, span := telemetry.StartSpan(ctx, "checkout.ApplyPaymentOutcome")
	defer span.End()

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		return domain.ErrPaymentNotFound
	}

	target := domain.PaymentStatusRejected
	if approved {
		target = domain.PaymentStatusApproved
	}
	if payment.Status != domain.PaymentStatusPending && payment.Status != target {
		// Conflicting outcome for a settled payment; never rewrite history.
		return fmt.Errorf("payment %s already settled as %s", paymentID, payment.Status)
	}

	switch payment.Kind {
	case domain.PaymentKindRaffle:
		if approved {
			err = s.reservations.Confirm(ctx, payment.ReferenceID, payment.Numbers, payment.Holder)
		} else {
			err = s.reservations.Release(ctx, payment.ReferenceID, payment.Numbers, payment.Holder)
		}
	case domain.PaymentKindCampaign:
		if approved {
			err = s.campaigns.MarkPledgePaid(ctx, payment.PledgeID)
		} else {
			err = s.campaigns.CancelPledge(ctx, payment.PledgeID)
		}
	default:
		err = fmt.Errorf("unknown payment kind %q", payment.Kind)
	}
	if err != nil {
		return err
	}

	if _, err := s.paymentRepo.UpdateStatus(ctx, paymentID, domain.PaymentStatusPending, target); err != nil {
		return err
	}

	s.log.WithContext(ctx).Info("payment outcome applied",
		zap.String("payment_id", paymentID),
		zap.String("kind", payment.Kind),
		zap.Bool("approved", approved),
	)
	return nil
}
