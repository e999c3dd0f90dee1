package inventory

import (
	"errors"
	"testing"

	"business_manager/internal/apperrors"
	"business_manager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveDecrementsAndHidesEmptyItem(t *testing.T) {
	item := &models.SellableItem{ID: 1, Name: "Chips", Quantity: 5, IsAvailable: true}

	require.NoError(t, Reserve(item, 3))
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, item.IsAvailable)

	require.NoError(t, Reserve(item, 2))
	assert.Equal(t, 0, item.Quantity)
	assert.False(t, item.IsAvailable)
}

func TestReserveInsufficientLeavesItemUntouched(t *testing.T) {
	item := &models.SellableItem{ID: 7, Name: "Samosas", Quantity: 2, IsAvailable: true}

	err := Reserve(item, 3)

	var stockErr *apperrors.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, uint(7), stockErr.ItemID)
	assert.Equal(t, 1, stockErr.Shortfall())
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, item.IsAvailable)
}

func TestZeroQuantityIsNoop(t *testing.T) {
	hidden := &models.SellableItem{Quantity: 4, IsAvailable: false}
	empty := &models.SellableItem{Quantity: 0, IsAvailable: false}

	require.NoError(t, Release(hidden, 0))
	require.NoError(t, Reserve(hidden, 0))
	require.NoError(t, Release(empty, 0))
	require.NoError(t, Reserve(empty, 0))

	assert.Equal(t, models.SellableItem{Quantity: 4, IsAvailable: false}, *hidden)
	assert.Equal(t, models.SellableItem{Quantity: 0, IsAvailable: false}, *empty)
}

func TestNegativeQuantityRejected(t *testing.T) {
	item := &models.SellableItem{Quantity: 1, IsAvailable: true}
	assert.ErrorIs(t, Reserve(item, -1), apperrors.ErrInvalidQuantity)
	assert.ErrorIs(t, Release(item, -1), apperrors.ErrInvalidQuantity)
	assert.Equal(t, 1, item.Quantity)
}

func TestReleaseRestoresAvailability(t *testing.T) {
	item := &models.SellableItem{Quantity: 0, IsAvailable: false}
	require.NoError(t, Release(item, 4))
	assert.Equal(t, 4, item.Quantity)
	assert.True(t, item.IsAvailable)

	hidden := &models.SellableItem{Quantity: 3, IsAvailable: false}
	require.NoError(t, Release(hidden, 1))
	assert.True(t, hidden.IsAvailable, "a release puts hidden items back on sale")
}

func TestAvailabilityTracksQuantityAcrossOperations(t *testing.T) {
	item := &models.SellableItem{Quantity: 0}
	ops := []struct {
		reserve bool
		qty     int
	}{
		{false, 3}, {true, 1}, {true, 2}, {false, 1}, {true, 1}, {false, 5}, {true, 5},
	}
	for _, op := range ops {
		if op.reserve {
			require.NoError(t, Reserve(item, op.qty))
		} else {
			require.NoError(t, Release(item, op.qty))
		}
		assert.Equal(t, item.Quantity > 0, item.IsAvailable)
	}
}

func TestSetAvailability(t *testing.T) {
	item := &models.SellableItem{Name: "Kebab", Quantity: 2, IsAvailable: true}
	require.NoError(t, SetAvailability(item, false))
	assert.False(t, item.IsAvailable)
	require.NoError(t, SetAvailability(item, true))
	assert.True(t, item.IsAvailable)

	empty := &models.SellableItem{Name: "Pilau"}
	var validation *apperrors.ValidationError
	assert.True(t, errors.As(SetAvailability(empty, true), &validation))
	assert.False(t, empty.IsAvailable)
}

type fakeStore struct {
	items   map[uint]models.SellableItem
	locked  []uint
	updated []uint
}

func (s *fakeStore) GetForUpdate(id uint) (*models.SellableItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	s.locked = append(s.locked, id)
	return &item, nil
}

func (s *fakeStore) UpdateStock(item *models.SellableItem) error {
	s.items[item.ID] = *item
	s.updated = append(s.updated, item.ID)
	return nil
}

func TestLedgerLocksInIDOrderAndFlushesOnlyChanges(t *testing.T) {
	store := &fakeStore{items: map[uint]models.SellableItem{
		1: {ID: 1, Quantity: 5, IsAvailable: true},
		2: {ID: 2, Quantity: 1, IsAvailable: true},
		3: {ID: 3, Quantity: 0},
	}}
	ledger := NewLedger(store)

	require.NoError(t, ledger.Lock(3, 1, 3, 2, 0))
	assert.Equal(t, []uint{1, 2, 3}, store.locked)

	require.NoError(t, ledger.Reserve(2, 1))
	require.NoError(t, ledger.Release(3, 2))
	require.NoError(t, ledger.Reserve(1, 0))
	assert.Equal(t, 1, store.items[2].Quantity, "store unchanged before flush")

	require.NoError(t, ledger.Flush())
	assert.Equal(t, []uint{2, 3}, store.updated)
	assert.Equal(t, 0, store.items[2].Quantity)
	assert.False(t, store.items[2].IsAvailable)
	assert.Equal(t, 2, store.items[3].Quantity)
	assert.True(t, store.items[3].IsAvailable)
}

func TestLedgerMissingItem(t *testing.T) {
	ledger := NewLedger(&fakeStore{items: map[uint]models.SellableItem{}})
	assert.ErrorIs(t, ledger.Reserve(9, 1), apperrors.ErrNotFound)
}

func TestHiddenOnlyWhenStockRemains(t *testing.T) {
	assert.True(t, Hidden(&models.SellableItem{Quantity: 3, IsAvailable: false}))
	assert.False(t, Hidden(&models.SellableItem{Quantity: 0, IsAvailable: false}), "sold out is not hidden")
	assert.False(t, Hidden(&models.SellableItem{Quantity: 3, IsAvailable: true}))
}
