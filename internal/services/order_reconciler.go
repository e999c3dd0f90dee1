package services

import (
	"errors"
	"fmt"

	"business_manager/internal/apperrors"
	"business_manager/internal/models"
)

type stockMoveKind int

const (
	moveRelease stockMoveKind = iota
	moveReserve
)

func (k stockMoveKind) String() string {
	if k == moveReserve {
		return "reserve"
	}
	return "release"
}

type stockMove struct {
	Kind     stockMoveKind
	ItemID   uint
	Quantity int
}

// StockLedger is the part of the inventory ledger an edit plan drives.
type StockLedger interface {
	Reserve(itemID uint, qty int) error
	Release(itemID uint, qty int) error
}

// EditPlan is the result of reconciling an order's current lines with the
// requested ones.
type EditPlan struct {
	Removed []models.OrderItem
	Updated []models.OrderItem
	Added   []models.OrderItem
	// Moves run in this order: stock freed by removed lines, then releases
	// from changed lines, then reservations from changed lines, then
	// reservations for added lines.
	Moves []stockMove
}

// Lines returns the order's lines once the plan is applied.
func (p *EditPlan) Lines() []models.OrderItem {
	lines := make([]models.OrderItem, 0, len(p.Updated)+len(p.Added))
	lines = append(lines, p.Updated...)
	return append(lines, p.Added...)
}

// PlanEdit compares existing lines with desired ones. Desired lines with a
// non-zero ID update the existing line of that ID; the rest are new.
func PlanEdit(existing, desired []models.OrderItem) (*EditPlan, error) {
	current := make(map[uint]models.OrderItem, len(existing))
	for _, line := range existing {
		current[line.ID] = line
	}

	plan := &EditPlan{}
	kept := make(map[uint]bool, len(desired))
	var releases, reserves, additions []stockMove

	for i, line := range desired {
		if line.ID == 0 {
			line.OrderID = 0
			plan.Added = append(plan.Added, line)
			additions = appendMove(additions, moveReserve, line.StockItemID(), line.Quantity)
			continue
		}

		old, ok := current[line.ID]
		if !ok {
			return nil, apperrors.Invalid(fmt.Sprintf("items[%d].id", i), "line %d does not belong to this order", line.ID)
		}
		if kept[line.ID] {
			return nil, apperrors.Invalid(fmt.Sprintf("items[%d].id", i), "line %d appears more than once", line.ID)
		}
		kept[line.ID] = true

		line.OrderID = old.OrderID
		line.CreatedAt = old.CreatedAt
		plan.Updated = append(plan.Updated, line)

		oldItem, newItem := old.StockItemID(), line.StockItemID()
		if oldItem != newItem {
			releases = appendMove(releases, moveRelease, oldItem, old.Quantity)
			reserves = appendMove(reserves, moveReserve, newItem, line.Quantity)
			continue
		}
		switch delta := line.Quantity - old.Quantity; {
		case delta > 0:
			reserves = appendMove(reserves, moveReserve, newItem, delta)
		case delta < 0:
			releases = appendMove(releases, moveRelease, newItem, -delta)
		}
	}

	var removals []stockMove
	for _, old := range existing {
		if kept[old.ID] {
			continue
		}
		plan.Removed = append(plan.Removed, old)
		removals = appendMove(removals, moveRelease, old.StockItemID(), old.Quantity)
	}

	plan.Moves = append(plan.Moves, removals...)
	plan.Moves = append(plan.Moves, releases...)
	plan.Moves = append(plan.Moves, reserves...)
	plan.Moves = append(plan.Moves, additions...)
	return plan, nil
}

func appendMove(moves []stockMove, kind stockMoveKind, itemID uint, qty int) []stockMove {
	if itemID == 0 || qty == 0 {
		return moves
	}
	return append(moves, stockMove{Kind: kind, ItemID: itemID, Quantity: qty})
}

// Apply runs the plan's stock moves. Every failed reservation is collected
// into one StockUnavailableError; the caller must roll back on any error.
func (p *EditPlan) Apply(ledger StockLedger) error {
	var violations []*apperrors.InsufficientStockError
	for _, move := range p.Moves {
		if move.Kind == moveRelease {
			if err := ledger.Release(move.ItemID, move.Quantity); err != nil {
				return err
			}
			continue
		}

		err := ledger.Reserve(move.ItemID, move.Quantity)
		var short *apperrors.InsufficientStockError
		switch {
		case err == nil:
		case errors.As(err, &short):
			violations = append(violations, short)
		default:
			return err
		}
	}
	if len(violations) > 0 {
		return &apperrors.StockUnavailableError{Violations: violations}
	}
	return nil
}
