package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"business_manager/internal/apperrors"
	"business_manager/internal/inventory"
	"business_manager/internal/models"

	"github.com/shopspring/decimal"
)

type CustomerInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// LineInput describes one order line. SellableItemID links a stocked item;
// without it the line is free text and ItemName is required. A nil
// UnitPrice takes the linked item's price.
type LineInput struct {
	ID             uint                 `json:"id"`
	SellableItemID *uint                `json:"sellable_item_id"`
	ItemName       string               `json:"item_name"`
	ItemType       models.ItemType      `json:"item_type"`
	ServiceTypes   []models.ServiceType `json:"service_types"`
	Condition      models.ItemCondition `json:"item_condition"`
	AdditionalInfo string               `json:"additional_info"`
	Quantity       int                  `json:"quantity"`
	UnitPrice      *decimal.Decimal     `json:"unit_price"`
}

type CreateOrderInput struct {
	Customer       CustomerInput      `json:"customer"`
	Shop           models.Shop        `json:"shop"`
	DeliveryDate   *time.Time         `json:"delivery_date"`
	PaymentType    models.PaymentType `json:"payment_type"`
	AmountPaid     decimal.Decimal    `json:"amount_paid"`
	AddressDetails string             `json:"address_details"`
	CreatedBy      string             `json:"created_by"`
	Items          []LineInput        `json:"items"`
}

// EditOrderInput replaces an order's lines with Items. Lines carrying the
// id of an existing line update it, lines without an id are added and
// existing lines left out are removed.
type EditOrderInput struct {
	Items          []LineInput `json:"items"`
	DeliveryDate   *time.Time  `json:"delivery_date"`
	AddressDetails *string     `json:"address_details"`
}

func (in *CreateOrderInput) validate() error {
	if !in.Shop.Valid() {
		return apperrors.Invalid("shop", "unknown shop %q", in.Shop)
	}
	if !in.PaymentType.Valid() {
		return apperrors.Invalid("payment_type", "unknown payment type %q", in.PaymentType)
	}
	if in.AmountPaid.IsNegative() {
		return apperrors.Invalid("amount_paid", "must not be negative")
	}
	if strings.TrimSpace(in.Customer.Name) == "" {
		return apperrors.Invalid("customer.name", "is required")
	}
	if len(in.Items) == 0 {
		return apperrors.Invalid("items", "an order needs at least one line")
	}
	return validateLines(in.Items)
}

func (in *EditOrderInput) validate() error {
	if len(in.Items) == 0 {
		return apperrors.Invalid("items", "an order needs at least one line")
	}
	return validateLines(in.Items)
}

func validateLines(lines []LineInput) error {
	for i, line := range lines {
		field := fmt.Sprintf("items[%d]", i)
		if line.Quantity < 1 {
			return apperrors.Invalid(field+".quantity", "must be at least 1")
		}
		if line.SellableItemID == nil && models.NormalizeNames(line.ItemName) == "" {
			return apperrors.Invalid(field+".item_name", "is required for lines without a catalog item")
		}
		if line.SellableItemID == nil && line.UnitPrice == nil {
			return apperrors.Invalid(field+".unit_price", "is required for lines without a catalog item")
		}
		if line.UnitPrice != nil && line.UnitPrice.IsNegative() {
			return apperrors.Invalid(field+".unit_price", "must not be negative")
		}
		if !line.ItemType.Valid() {
			return apperrors.Invalid(field+".item_type", "unknown item type %q", line.ItemType)
		}
		if !line.Condition.Valid() {
			return apperrors.Invalid(field+".item_condition", "unknown condition %q", line.Condition)
		}
		for _, service := range line.ServiceTypes {
			if !service.Valid() {
				return apperrors.Invalid(field+".service_types", "unknown service %q", service)
			}
		}
	}
	return nil
}

// stockItemIDs lists the catalog items referenced by lines.
func stockItemIDs(lines []LineInput) []uint {
	var ids []uint
	for _, line := range lines {
		if line.SellableItemID != nil {
			ids = append(ids, *line.SellableItemID)
		}
	}
	return ids
}

// lockLines locks every catalog item the lines and extra ids reference. A
// missing item is reported against the first line naming it.
func lockLines(ledger *inventory.Ledger, lines []LineInput, extra ...uint) error {
	err := ledger.Lock(append(stockItemIDs(lines), extra...)...)
	if err == nil || !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	for i, line := range lines {
		if line.SellableItemID == nil {
			continue
		}
		if _, lerr := ledger.Item(*line.SellableItemID); errors.Is(lerr, apperrors.ErrNotFound) {
			return apperrors.Invalid(fmt.Sprintf("items[%d].sellable_item_id", i), "item %d does not exist", *line.SellableItemID)
		}
	}
	return err
}

// refuseHidden rejects a new reservation against an item the owner has
// taken off sale. Lines keeping their item may still change quantity.
func refuseHidden(ledger *inventory.Ledger, index int, itemID uint) error {
	if itemID == 0 {
		return nil
	}
	item, err := ledger.Item(itemID)
	if err != nil {
		return err
	}
	if inventory.Hidden(item) {
		return apperrors.Invalid(fmt.Sprintf("items[%d].sellable_item_id", index), "%s is not on sale", item.Name)
	}
	return nil
}

// buildLine turns an input line into an order item, filling name and price
// from the locked catalog item when the line references one.
func buildLine(ledger *inventory.Ledger, index int, in LineInput) (models.OrderItem, error) {
	line := models.OrderItem{
		ID:             in.ID,
		ItemName:       models.NormalizeNames(in.ItemName),
		ItemType:       in.ItemType,
		ServiceTypes:   models.JoinServices(in.ServiceTypes),
		Condition:      in.Condition,
		AdditionalInfo: in.AdditionalInfo,
		Quantity:       in.Quantity,
	}
	if in.UnitPrice != nil {
		line.UnitPrice = *in.UnitPrice
	}

	if in.SellableItemID != nil {
		item, err := ledger.Item(*in.SellableItemID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return line, apperrors.Invalid(fmt.Sprintf("items[%d].sellable_item_id", index), "item %d does not exist", *in.SellableItemID)
			}
			return line, err
		}
		id := item.ID
		line.SellableItemID = &id
		if line.ItemName == "" {
			line.ItemName = item.Name
		}
		if in.UnitPrice == nil {
			line.UnitPrice = item.Price
		}
	}

	line.Recalculate()
	return line, nil
}

func normalizeDate(d *time.Time, now time.Time) time.Time {
	if d == nil || d.IsZero() {
		return models.StartOfDay(now)
	}
	return models.StartOfDay(*d)
}
