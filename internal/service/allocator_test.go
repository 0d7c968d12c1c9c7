package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rifahub/backend/internal/domain"
	"github.com/rifahub/backend/internal/repository"
)

func TestProposeExplicit(t *testing.T) {
	a := NewAllocator(repository.NewMemorySlotRepository())

	tests := []struct {
		name       string
		totalSlots int
		numbers    []int
		want       []int
		wantErr    bool
	}{
		{name: "valid", totalSlots: 10, numbers: []int{5, 1, 9}, want: []int{1, 5, 9}},
		{name: "deduplicates", totalSlots: 10, numbers: []int{3, 3, 3}, want: []int{3}},
		{name: "boundary low", totalSlots: 10, numbers: []int{1}, want: []int{1}},
		{name: "boundary high", totalSlots: 10, numbers: []int{10}, want: []int{10}},
		{name: "zero rejected", totalSlots: 10, numbers: []int{0}, wantErr: true},
		{name: "above range", totalSlots: 10, numbers: []int{11}, wantErr: true},
		{name: "negative", totalSlots: 10, numbers: []int{-1}, wantErr: true},
		{name: "empty", totalSlots: 10, numbers: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.ProposeExplicit(tt.totalSlots, tt.numbers)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProposeAuto(t *testing.T) {
	ctx := context.Background()
	slots := repository.NewMemorySlotRepository()
	require.NoError(t, slots.CreateInventory(ctx, "r1", 10))
	a := NewAllocator(slots)

	// Occupy 1 and 2.
	for _, n := range []int{1, 2} {
		ok, err := slots.CompareAndSetStatus(ctx, "r1", n, repository.SlotCAS{
			ExpectedStatus: domain.SlotStatusAvailable,
			NewStatus:      domain.SlotStatusReserved,
			NewHolder:      &domain.Holder{TaxID: "1", Phone: "1"},
		})
		require.NoError(t, err)
		require.True(t, ok)
	}

	got, err := a.ProposeAuto(ctx, "r1", 10, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 5}, got)
}

func TestProposeAuto_ExcludeSet(t *testing.T) {
	ctx := context.Background()
	slots := repository.NewMemorySlotRepository()
	require.NoError(t, slots.CreateInventory(ctx, "r1", 5))
	a := NewAllocator(slots)

	exclude := map[int]struct{}{1: {}, 3: {}}
	got, err := a.ProposeAuto(ctx, "r1", 5, 3, exclude)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 5}, got)
}

func TestProposeAuto_Insufficient(t *testing.T) {
	ctx := context.Background()
	slots := repository.NewMemorySlotRepository()
	require.NoError(t, slots.CreateInventory(ctx, "r1", 3))
	a := NewAllocator(slots)

	_, err := a.ProposeAuto(ctx, "r1", 3, 4, nil)
	assert.ErrorIs(t, err, domain.ErrInsufficientInventory)
}

func TestProposeAuto_InvalidQuantity(t *testing.T) {
	a := NewAllocator(repository.NewMemorySlotRepository())

	_, err := a.ProposeAuto(context.Background(), "r1", 10, 0, nil)
	assert.Error(t, err)
}
