package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is one line of an order. Hotel lines reference a SellableItem and
// move stock; laundry lines carry a free-text description and do not.
type OrderItem struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	OrderID        uint            `json:"order_id" gorm:"not null;index"`
	SellableItemID *uint           `json:"sellable_item_id" gorm:"index"`
	SellableItem   *SellableItem   `json:"sellable_item,omitempty"`
	ItemName       string          `json:"item_name" gorm:"size:255;not null"`
	ItemType       ItemType        `json:"item_type" gorm:"size:32"`
	ServiceTypes   string          `json:"service_types" gorm:"size:255"`
	Condition      ItemCondition   `json:"item_condition" gorm:"size:16"`
	AdditionalInfo string          `json:"additional_info" gorm:"type:text"`
	Quantity       int             `json:"quantity" gorm:"not null"`
	UnitPrice      decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	ExtendedPrice  decimal.Decimal `json:"extended_price" gorm:"type:numeric(12,2);not null"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Extended is quantity × unit price.
func (i *OrderItem) Extended() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i *OrderItem) Recalculate() {
	i.ExtendedPrice = i.Extended()
}

// StockItemID returns the referenced sellable item, or 0 for free-text lines.
func (i *OrderItem) StockItemID() uint {
	if i.SellableItemID == nil {
		return 0
	}
	return *i.SellableItemID
}

// Services splits the stored multi-select service list.
func (i *OrderItem) Services() []ServiceType {
	var out []ServiceType
	for _, s := range strings.Split(i.ServiceTypes, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, ServiceType(s))
		}
	}
	return out
}

// Names splits the comma separated item names.
func (i *OrderItem) Names() []string {
	return SplitNames(i.ItemName)
}

type ServiceType string

const (
	ServiceWashing     ServiceType = "Washing"
	ServiceFolding     ServiceType = "Folding"
	ServiceIroning     ServiceType = "Ironing"
	ServiceDryCleaning ServiceType = "Dry cleaning"
)

func (s ServiceType) Valid() bool {
	switch s {
	case ServiceWashing, ServiceFolding, ServiceIroning, ServiceDryCleaning:
		return true
	}
	return false
}

// JoinServices stores a service multi-select as a comma list.
func JoinServices(services []ServiceType) string {
	parts := make([]string, 0, len(services))
	for _, s := range services {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ",")
}

type ItemType string

const (
	ItemTypeUnset ItemType = ""
	ItemClothing  ItemType = "Clothing"
	ItemBedding   ItemType = "Bedding"
	ItemHousehold ItemType = "Household items"
	ItemFootwear  ItemType = "Footwares"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeUnset, ItemClothing, ItemBedding, ItemHousehold, ItemFootwear:
		return true
	}
	return false
}

type ItemCondition string

const (
	ConditionUnset ItemCondition = ""
	ConditionNew   ItemCondition = "new"
	ConditionOld   ItemCondition = "old"
	ConditionTorn  ItemCondition = "torn"
)

func (c ItemCondition) Valid() bool {
	switch c {
	case ConditionUnset, ConditionNew, ConditionOld, ConditionTorn:
		return true
	}
	return false
}

// SplitNames splits a comma separated list, trimming and dropping blanks.
func SplitNames(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// NormalizeNames rewrites "a ,b,, c" as "a, b, c".
func NormalizeNames(s string) string {
	return strings.Join(SplitNames(s), ", ")
}
