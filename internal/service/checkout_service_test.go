package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rifahub/backend/internal/domain"
	"github.com/rifahub/backend/internal/dto"
	"github.com/rifahub/backend/internal/gateway"
	"github.com/rifahub/backend/internal/repository"
)

// memoryPaymentRepo is a minimal in-memory PaymentRepository. owners maps
// a reference ID (raffle or campaign) to its organizer for pending listings.
type memoryPaymentRepo struct {
	payments map[string]*domain.Payment
	owners   map[string]string
}

func newMemoryPaymentRepo() *memoryPaymentRepo {
	return &memoryPaymentRepo{
		payments: make(map[string]*domain.Payment),
		owners:   make(map[string]string),
	}
}

func (r *memoryPaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	copied := *p
	r.payments[p.ID] = &copied
	return nil
}

func (r *memoryPaymentRepo) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *memoryPaymentRepo) UpdateStatus(ctx context.Context, id, expected, next string) (bool, error) {
	p, ok := r.payments[id]
	if !ok || p.Status != expected {
		return false, nil
	}
	p.Status = next
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *memoryPaymentRepo) SetProviderRef(ctx context.Context, id, providerRef string) error {
	p, ok := r.payments[id]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	p.ProviderRef = providerRef
	return nil
}

func (r *memoryPaymentRepo) ListPendingByOrganizer(ctx context.Context, organizerID string) ([]*domain.Payment, error) {
	var pending []*domain.Payment
	for _, p := range r.payments {
		if p.Status == domain.PaymentStatusPending && r.owners[p.ReferenceID] == organizerID {
			copied := *p
			pending = append(pending, &copied)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	return pending, nil
}

type checkoutFixture struct {
	slots    *repository.MemorySlotRepository
	payments *memoryPaymentRepo
	service  CheckoutService
	raffleID string
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	ctx := context.Background()

	slots := repository.NewMemorySlotRepository()
	raffles := newMemoryRaffleRepo()
	campaigns := newMemoryCampaignRepo()
	pledges := newMemoryPledgeRepo()
	payments := newMemoryPaymentRepo()
	organizers := newMemoryOrganizerRepo(&domain.Organizer{ID: "org-1", PlanTier: domain.PlanTierPremium})

	raffleID := "raffle-1"
	require.NoError(t, raffles.Create(ctx, &domain.Raffle{
		ID:          raffleID,
		OrganizerID: "org-1",
		Title:       "Rifa",
		TicketPrice: 500,
		TotalSlots:  10,
		Status:      domain.RaffleStatusActive,
	}))
	require.NoError(t, slots.CreateInventory(ctx, raffleID, 10))
	payments.owners[raffleID] = "org-1"

	log := testLogger(t)
	quota := NewQuotaService(organizers, raffles, campaigns)
	reservations := NewReservationService(slots, raffles, time.Hour, 3, log)
	raffleService := NewRaffleService(raffles, slots, quota, log)
	campaignService := NewCampaignService(campaigns, pledges, quota, log)
	gw := gateway.NewMockGateway(gateway.Config{
		Provider:      "mock",
		WebhookSecret: "secret",
		SuccessURL:    "http://localhost/ok",
	})
	svc := NewCheckoutService(payments, reservations, raffleService, campaignService, gw, log)

	return &checkoutFixture{slots: slots, payments: payments, service: svc, raffleID: raffleID}
}

func (f *checkoutFixture) slotStatus(t *testing.T, number int) string {
	t.Helper()
	slot, err := f.slots.GetSlot(context.Background(), f.raffleID, number)
	require.NoError(t, err)
	require.NotNil(t, slot)
	return slot.Status
}

func raffleCheckoutReq(raffleID string, numbers []int, quantity int) *dto.RaffleCheckoutRequest {
	return &dto.RaffleCheckoutRequest{
		RaffleID: raffleID,
		Numbers:  numbers,
		Quantity: quantity,
		Method:   domain.PaymentMethodPix,
		Buyer:    dto.BuyerInfo{Name: "Ana", TaxID: "11111111111", Phone: "11999990001"},
	}
}

func TestStartRaffleCheckout_ExplicitNumbers(t *testing.T) {
	f := newCheckoutFixture(t)

	result, err := f.service.StartRaffleCheckout(context.Background(), raffleCheckoutReq(f.raffleID, []int{2, 5}, 0))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5}, result.Numbers)
	assert.Equal(t, int64(1000), result.Amount)
	assert.NotEmpty(t, result.PaymentID)
	assert.NotEmpty(t, result.RedirectURL)

	assert.Equal(t, domain.SlotStatusReserved, f.slotStatus(t, 2))
	assert.Equal(t, domain.SlotStatusReserved, f.slotStatus(t, 5))

	payment, err := f.payments.GetByID(context.Background(), result.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, payment.Status)
	assert.NotEmpty(t, payment.ProviderRef)
}

func TestStartRaffleCheckout_AutoPick(t *testing.T) {
	f := newCheckoutFixture(t)

	result, err := f.service.StartRaffleCheckout(context.Background(), raffleCheckoutReq(f.raffleID, nil, 3))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, result.Numbers)
	assert.Equal(t, int64(1500), result.Amount)
}

func TestApplyPaymentOutcome_Approved(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	result, err := f.service.StartRaffleCheckout(ctx, raffleCheckoutReq(f.raffleID, []int{2, 5}, 0))
	require.NoError(t, err)

	require.NoError(t, f.service.ApplyPaymentOutcome(ctx, result.PaymentID, true))
	assert.Equal(t, domain.SlotStatusConfirmed, f.slotStatus(t, 2))
	assert.Equal(t, domain.SlotStatusConfirmed, f.slotStatus(t, 5))

	payment, err := f.payments.GetByID(ctx, result.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusApproved, payment.Status)

	// At-least-once delivery: the same outcome applied again is harmless.
	require.NoError(t, f.service.ApplyPaymentOutcome(ctx, result.PaymentID, true))
	assert.Equal(t, domain.SlotStatusConfirmed, f.slotStatus(t, 2))
}

func TestApplyPaymentOutcome_Rejected(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	result, err := f.service.StartRaffleCheckout(ctx, raffleCheckoutReq(f.raffleID, []int{2, 5}, 0))
	require.NoError(t, err)

	require.NoError(t, f.service.ApplyPaymentOutcome(ctx, result.PaymentID, false))
	assert.Equal(t, domain.SlotStatusAvailable, f.slotStatus(t, 2))
	assert.Equal(t, domain.SlotStatusAvailable, f.slotStatus(t, 5))

	payment, err := f.payments.GetByID(ctx, result.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRejected, payment.Status)
}

func TestApplyPaymentOutcome_RejectedAfterExpiryAndRebuy(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	result, err := f.service.StartRaffleCheckout(ctx, raffleCheckoutReq(f.raffleID, []int{2}, 0))
	require.NoError(t, err)

	// The hold expires, the sweeper reclaims it and another buyer takes
	// the number before the rejection webhook lands.
	ana := domain.Holder{Name: "Ana", TaxID: "11111111111", Phone: "11999990001"}
	beto := domain.Holder{Name: "Beto", TaxID: "22222222222", Phone: "11999990002"}
	ok, err := f.slots.CompareAndSetStatus(ctx, f.raffleID, 2, repository.SlotCAS{
		ExpectedStatus: domain.SlotStatusReserved,
		ExpectedHolder: &ana,
		NewStatus:      domain.SlotStatusAvailable,
	})
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = f.slots.CompareAndSetStatus(ctx, f.raffleID, 2, repository.SlotCAS{
		ExpectedStatus: domain.SlotStatusAvailable,
		NewStatus:      domain.SlotStatusReserved,
		NewHolder:      &beto,
	})
	require.NoError(t, err)
	require.True(t, ok)

	// The late rejection still settles the payment instead of erroring,
	// so the provider stops retrying. The new hold is untouched.
	require.NoError(t, f.service.ApplyPaymentOutcome(ctx, result.PaymentID, false))

	payment, err := f.payments.GetByID(ctx, result.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRejected, payment.Status)

	slot, err := f.slots.GetSlot(ctx, f.raffleID, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotStatusReserved, slot.Status)
	assert.True(t, slot.Holder.Equal(beto))
}

func TestApplyPaymentOutcome_ConflictingOutcome(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	result, err := f.service.StartRaffleCheckout(ctx, raffleCheckoutReq(f.raffleID, []int{2}, 0))
	require.NoError(t, err)

	require.NoError(t, f.service.ApplyPaymentOutcome(ctx, result.PaymentID, true))
	// A later contradictory webhook must not unwind a settled payment.
	err = f.service.ApplyPaymentOutcome(ctx, result.PaymentID, false)
	assert.Error(t, err)
	assert.Equal(t, domain.SlotStatusConfirmed, f.slotStatus(t, 2))
}

func TestApplyPaymentOutcome_UnknownPayment(t *testing.T) {
	f := newCheckoutFixture(t)

	err := f.service.ApplyPaymentOutcome(context.Background(), "missing", true)
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

func TestListPendingPayments(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	first, err := f.service.StartRaffleCheckout(ctx, raffleCheckoutReq(f.raffleID, []int{1}, 0))
	require.NoError(t, err)
	second, err := f.service.StartRaffleCheckout(ctx, raffleCheckoutReq(f.raffleID, []int{2}, 0))
	require.NoError(t, err)

	// A settled payment drops off the list.
	require.NoError(t, f.service.ApplyPaymentOutcome(ctx, second.PaymentID, true))

	pending, err := f.service.ListPendingPayments(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.PaymentID, pending[0].ID)

	other, err := f.service.ListPendingPayments(ctx, "org-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSettlePayment_Confirm(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	result, err := f.service.StartRaffleCheckout(ctx, raffleCheckoutReq(f.raffleID, []int{3}, 0))
	require.NoError(t, err)

	require.NoError(t, f.service.SettlePayment(ctx, "org-1", result.PaymentID, true))
	assert.Equal(t, domain.SlotStatusConfirmed, f.slotStatus(t, 3))

	payment, err := f.payments.GetByID(ctx, result.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusApproved, payment.Status)
}

func TestSettlePayment_NotOwner(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	result, err := f.service.StartRaffleCheckout(ctx, raffleCheckoutReq(f.raffleID, []int{3}, 0))
	require.NoError(t, err)

	err = f.service.SettlePayment(ctx, "org-2", result.PaymentID, true)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	assert.Equal(t, domain.SlotStatusReserved, f.slotStatus(t, 3))
}

func TestSettlePayment_UnknownPayment(t *testing.T) {
	f := newCheckoutFixture(t)

	err := f.service.SettlePayment(context.Background(), "org-1", "missing", true)
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

func TestStartCampaignCheckout_FullFlow(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	campaigns := newMemoryCampaignRepo()
	pledges := newMemoryPledgeRepo()
	payments := newMemoryPaymentRepo()
	organizers := newMemoryOrganizerRepo(&domain.Organizer{ID: "org-1", PlanTier: domain.PlanTierPremium})
	log := testLogger(t)
	quota := NewQuotaService(organizers, newMemoryRaffleRepo(), campaigns)
	campaignService := NewCampaignService(campaigns, pledges, quota, log)
	campaign, err := campaignService.CreateCampaign(ctx, "org-1", &dto.CreateCampaignRequest{
		Title:     "Vaquinha",
		UnitPrice: 250,
		Mode:      domain.CampaignModeSimple,
	})
	require.NoError(t, err)

	reservations := NewReservationService(f.slots, newMemoryRaffleRepo(), time.Hour, 3, log)
	raffleService := NewRaffleService(newMemoryRaffleRepo(), f.slots, quota, log)
	gw := gateway.NewMockGateway(gateway.Config{WebhookSecret: "secret", SuccessURL: "http://localhost/ok"})
	svc := NewCheckoutService(payments, reservations, raffleService, campaignService, gw, log)

	result, err := svc.StartCampaignCheckout(ctx, &dto.CampaignCheckoutRequest{
		CampaignID: campaign.ID,
		Quantity:   4,
		Method:     domain.PaymentMethodPix,
		Buyer:      dto.BuyerInfo{Name: "Ana", TaxID: "11111111111", Phone: "11999990001"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), result.Amount)
	assert.NotEmpty(t, result.PledgeID)

	require.NoError(t, svc.ApplyPaymentOutcome(ctx, result.PaymentID, true))
	pledge, err := pledges.GetByID(ctx, result.PledgeID)
	require.NoError(t, err)
	assert.Equal(t, domain.PledgeStatusPaid, pledge.Status)
}
