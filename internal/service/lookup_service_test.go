package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rifahub/backend/internal/domain"
	"github.com/rifahub/backend/internal/repository"
)

func TestFindByBuyer(t *testing.T) {
	ctx := context.Background()
	slots := repository.NewMemorySlotRepository()
	raffles := newMemoryRaffleRepo()
	campaigns := newMemoryCampaignRepo()
	pledges := newMemoryPledgeRepo()

	require.NoError(t, raffles.Create(ctx, &domain.Raffle{
		ID: "r1", OrganizerID: "org-1", Title: "Rifa do carro",
		TicketPrice: 100, TotalSlots: 5, Status: domain.RaffleStatusActive,
	}))
	require.NoError(t, slots.CreateInventory(ctx, "r1", 5))
	require.NoError(t, campaigns.Create(ctx, &domain.Campaign{
		ID: "c1", OrganizerID: "org-1", Title: "Vaquinha", UnitPrice: 50,
	}))

	// Ana holds two slots, one confirmed and flagged winner.
	for _, n := range []int{2, 4} {
		ok, err := slots.CompareAndSetStatus(ctx, "r1", n, repository.SlotCAS{
			ExpectedStatus: domain.SlotStatusAvailable,
			NewStatus:      domain.SlotStatusConfirmed,
			NewHolder:      &buyerAna,
		})
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.NoError(t, slots.SetWinner(ctx, "r1", 4))

	// One paid pledge, one cancelled pledge (hidden from the lookup).
	require.NoError(t, pledges.Create(ctx, &domain.Pledge{
		ID: "p1", CampaignID: "c1", Quantity: 3, Holder: buyerAna,
		Status: domain.PledgeStatusPaid, CreatedAt: time.Now(),
	}))
	require.NoError(t, pledges.Create(ctx, &domain.Pledge{
		ID: "p2", CampaignID: "c1", Quantity: 9, Holder: buyerAna,
		Status: domain.PledgeStatusCancelled, CreatedAt: time.Now(),
	}))

	svc := NewLookupService(slots, pledges, raffles, campaigns)
	result, err := svc.FindByBuyer(ctx, buyerAna.TaxID, buyerAna.Phone)
	require.NoError(t, err)
	require.Len(t, result.Tickets, 3)

	var winners, raffleTickets, campaignTickets int
	for _, ticket := range result.Tickets {
		switch ticket.Kind {
		case "raffle":
			raffleTickets++
			assert.Equal(t, "Rifa do carro", ticket.Title)
			if ticket.IsWinner {
				winners++
				assert.Equal(t, 4, ticket.Number)
			}
		case "campaign":
			campaignTickets++
			assert.Equal(t, "Vaquinha", ticket.Title)
			assert.Equal(t, 3, ticket.Quantity)
		}
	}
	assert.Equal(t, 2, raffleTickets)
	assert.Equal(t, 1, campaignTickets)
	assert.Equal(t, 1, winners)
}

func TestFindByBuyer_UnknownIdentity(t *testing.T) {
	svc := NewLookupService(
		repository.NewMemorySlotRepository(),
		newMemoryPledgeRepo(),
		newMemoryRaffleRepo(),
		newMemoryCampaignRepo(),
	)

	result, err := svc.FindByBuyer(context.Background(), "00000000000", "11900000000")
	require.NoError(t, err)
	assert.Empty(t, result.Tickets, "unknown buyers get an empty list, not an error")
}
