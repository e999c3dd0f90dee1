package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type FoodCategory struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// SellableItem is a stocked catalog entry. Quantity and IsAvailable are
// written only by the inventory package.
type SellableItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	CategoryID  uint            `json:"category_id" gorm:"not null;index"`
	Category    FoodCategory    `json:"category"`
	Name        string          `json:"name" gorm:"size:100;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null;default:0"`
	Quantity    int             `json:"quantity" gorm:"not null;default:0"`
	IsAvailable bool            `json:"is_available" gorm:"not null;default:false"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
