// Package inventory owns every write to a sellable item's stock count and
// availability flag.
package inventory

import (
	"fmt"
	"sort"

	"business_manager/internal/apperrors"
	"business_manager/internal/models"
)

// Reserve takes qty units out of stock. A zero quantity is a no-op.
func Reserve(item *models.SellableItem, qty int) error {
	if qty < 0 {
		return apperrors.ErrInvalidQuantity
	}
	if qty == 0 {
		return nil
	}
	if item.Quantity < qty {
		return &apperrors.InsufficientStockError{
			ItemID:    item.ID,
			ItemName:  item.Name,
			Requested: qty,
			Available: item.Quantity,
		}
	}
	item.Quantity -= qty
	if item.Quantity == 0 {
		item.IsAvailable = false
	}
	return nil
}

// Release puts qty units back into stock. A zero quantity is a no-op.
func Release(item *models.SellableItem, qty int) error {
	if qty < 0 {
		return apperrors.ErrInvalidQuantity
	}
	if qty == 0 {
		return nil
	}
	item.Quantity += qty
	releaseRestoresAvailability(item)
	return nil
}

// releaseRestoresAvailability puts an item back on sale after a release,
// including items the owner had hidden while they still had stock.
func releaseRestoresAvailability(item *models.SellableItem) {
	item.IsAvailable = item.Quantity > 0
}

// Hidden reports whether the owner took an item off sale while it still
// has stock. A sold out item is not hidden; reserving it fails on stock.
func Hidden(item *models.SellableItem) bool {
	return !item.IsAvailable && item.Quantity > 0
}

// SetAvailability lets the owner hide an item, or show it again when it has
// stock.
func SetAvailability(item *models.SellableItem, available bool) error {
	if available && item.Quantity == 0 {
		return apperrors.Invalid("is_available", "%s has no stock", item.Name)
	}
	item.IsAvailable = available
	return nil
}

// ItemStore loads items under a row lock and persists stock changes.
type ItemStore interface {
	GetForUpdate(id uint) (*models.SellableItem, error)
	UpdateStock(item *models.SellableItem) error
}

// Ledger applies reserve and release against locked rows inside a single
// transaction. Changes reach the store only on Flush.
type Ledger struct {
	store ItemStore
	items map[uint]*models.SellableItem
	dirty map[uint]bool
}

func NewLedger(store ItemStore) *Ledger {
	return &Ledger{
		store: store,
		items: make(map[uint]*models.SellableItem),
		dirty: make(map[uint]bool),
	}
}

// Lock loads and locks the given items in ascending id order so concurrent
// transactions acquire rows in the same sequence.
func (l *Ledger) Lock(ids ...uint) error {
	sorted := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		sorted = append(sorted, id)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for _, id := range sorted {
		if _, err := l.Item(id); err != nil {
			return err
		}
	}
	return nil
}

// Item returns the locked copy of an item, loading it on first use.
func (l *Ledger) Item(id uint) (*models.SellableItem, error) {
	if item, ok := l.items[id]; ok {
		return item, nil
	}
	item, err := l.store.GetForUpdate(id)
	if err != nil {
		return nil, fmt.Errorf("load item %d: %w", id, err)
	}
	l.items[id] = item
	return item, nil
}

func (l *Ledger) Reserve(id uint, qty int) error {
	item, err := l.Item(id)
	if err != nil {
		return err
	}
	if err := Reserve(item, qty); err != nil {
		return err
	}
	if qty > 0 {
		l.dirty[id] = true
	}
	return nil
}

func (l *Ledger) Release(id uint, qty int) error {
	item, err := l.Item(id)
	if err != nil {
		return err
	}
	if err := Release(item, qty); err != nil {
		return err
	}
	if qty > 0 {
		l.dirty[id] = true
	}
	return nil
}

// Flush writes every changed item back to the store.
func (l *Ledger) Flush() error {
	ids := make([]uint, 0, len(l.dirty))
	for id := range l.dirty {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if err := l.store.UpdateStock(l.items[id]); err != nil {
			return fmt.Errorf("update stock for item %d: %w", id, err)
		}
		delete(l.dirty, id)
	}
	return nil
}
