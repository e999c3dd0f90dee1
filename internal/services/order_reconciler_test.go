package services

import (
	"errors"
	"math/rand"
	"testing"

	"business_manager/internal/apperrors"
	"business_manager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLedger tracks stock and net reservations per item.
type fakeLedger struct {
	stock    map[uint]int
	reserved map[uint]int
}

func newFakeLedger(stock map[uint]int) *fakeLedger {
	return &fakeLedger{stock: stock, reserved: make(map[uint]int)}
}

func (l *fakeLedger) Reserve(id uint, qty int) error {
	if l.stock[id] < qty {
		return &apperrors.InsufficientStockError{ItemID: id, Requested: qty, Available: l.stock[id]}
	}
	l.stock[id] -= qty
	l.reserved[id] += qty
	return nil
}

func (l *fakeLedger) Release(id uint, qty int) error {
	l.stock[id] += qty
	l.reserved[id] -= qty
	return nil
}

func stocked(id, itemID uint, qty int) models.OrderItem {
	return models.OrderItem{ID: id, OrderID: 7, SellableItemID: ref(itemID), Quantity: qty}
}

func TestPlanEditClassifiesLines(t *testing.T) {
	existing := []models.OrderItem{stocked(1, 10, 2), stocked(2, 20, 1), {ID: 3, OrderID: 7, ItemName: "duvet", Quantity: 1}}
	desired := []models.OrderItem{stocked(1, 10, 5), {ID: 3, ItemName: "duvet", Quantity: 2}, stocked(0, 30, 1)}

	plan, err := PlanEdit(existing, desired)
	require.NoError(t, err)

	require.Len(t, plan.Removed, 1)
	assert.Equal(t, uint(2), plan.Removed[0].ID)
	require.Len(t, plan.Updated, 2)
	assert.Equal(t, uint(7), plan.Updated[0].OrderID)
	require.Len(t, plan.Added, 1)
	assert.Equal(t, []stockMove{
		{Kind: moveRelease, ItemID: 20, Quantity: 1},
		{Kind: moveReserve, ItemID: 10, Quantity: 3},
		{Kind: moveReserve, ItemID: 30, Quantity: 1},
	}, plan.Moves)
	assert.Len(t, plan.Lines(), 3)
}

func TestPlanEditOrdersReleasesBeforeReserves(t *testing.T) {
	existing := []models.OrderItem{stocked(1, 10, 3), stocked(2, 20, 3)}
	desired := []models.OrderItem{stocked(1, 20, 3), stocked(2, 10, 3)}

	plan, err := PlanEdit(existing, desired)
	require.NoError(t, err)

	kinds := make([]stockMoveKind, 0, len(plan.Moves))
	for _, m := range plan.Moves {
		kinds = append(kinds, m.Kind)
	}
	assert.Equal(t, []stockMoveKind{moveRelease, moveRelease, moveReserve, moveReserve}, kinds)

	// Swapping two fully reserved items succeeds with no spare stock.
	ledger := newFakeLedger(map[uint]int{10: 0, 20: 0})
	require.NoError(t, plan.Apply(ledger))
	assert.Equal(t, map[uint]int{10: 0, 20: 0}, ledger.stock)
}

func TestPlanEditRejectsUnknownAndDuplicateIDs(t *testing.T) {
	existing := []models.OrderItem{stocked(1, 10, 1)}

	_, err := PlanEdit(existing, []models.OrderItem{stocked(9, 10, 1)})
	var invalid *apperrors.ValidationError
	assert.True(t, errors.As(err, &invalid))

	_, err = PlanEdit(existing, []models.OrderItem{stocked(1, 10, 1), stocked(1, 10, 2)})
	assert.True(t, errors.As(err, &invalid))
}

func TestPlanEditUnchangedLinesMoveNothing(t *testing.T) {
	existing := []models.OrderItem{stocked(1, 10, 2)}

	plan, err := PlanEdit(existing, []models.OrderItem{stocked(1, 10, 2)})

	require.NoError(t, err)
	assert.Empty(t, plan.Moves)
}

func TestApplyCollectsEveryShortage(t *testing.T) {
	plan, err := PlanEdit(nil, []models.OrderItem{stocked(0, 10, 3), stocked(0, 20, 1), stocked(0, 30, 2)})
	require.NoError(t, err)

	err = plan.Apply(newFakeLedger(map[uint]int{10: 1, 20: 5, 30: 0}))

	var unavailable *apperrors.StockUnavailableError
	require.True(t, errors.As(err, &unavailable))
	require.Len(t, unavailable.Violations, 2)
	assert.Equal(t, uint(10), unavailable.Violations[0].ItemID)
	assert.Equal(t, uint(30), unavailable.Violations[1].ItemID)
}

// Across any sequence of edits, net reservations per item equal the
// quantity held by the order's current lines.
func TestEditsConserveStock(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	items := []uint{10, 20, 30}
	ledger := newFakeLedger(map[uint]int{10: 1000, 20: 1000, 30: 1000})

	var lines []models.OrderItem
	nextID := uint(1)
	for step := 0; step < 200; step++ {
		var desired []models.OrderItem
		for _, line := range lines {
			switch rng.Intn(3) {
			case 0:
				continue
			case 1:
				line.Quantity = 1 + rng.Intn(5)
				line.SellableItemID = ref(items[rng.Intn(len(items))])
			}
			desired = append(desired, line)
		}
		for n := rng.Intn(3); n > 0; n-- {
			desired = append(desired, stocked(0, items[rng.Intn(len(items))], 1+rng.Intn(5)))
		}

		plan, err := PlanEdit(lines, desired)
		require.NoError(t, err)
		require.NoError(t, plan.Apply(ledger))

		lines = plan.Lines()
		for i := range lines {
			if lines[i].ID == 0 {
				lines[i].ID = nextID
				nextID++
			}
		}

		held := make(map[uint]int)
		for _, line := range lines {
			held[line.StockItemID()] += line.Quantity
		}
		for _, id := range items {
			require.Equal(t, held[id], ledger.reserved[id], "item %d at step %d", id, step)
		}
	}
}
