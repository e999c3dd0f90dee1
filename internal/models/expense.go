package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ExpenseCategory struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Label     string    `json:"label" gorm:"size:100;uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

type ExpenseRecord struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	CategoryID   uint            `json:"category_id" gorm:"not null;index"`
	Category     ExpenseCategory `json:"category"`
	Shop         Shop            `json:"shop" gorm:"size:32;not null;index"`
	BusinessLine BusinessLine    `json:"business_line" gorm:"size:16;not null;index"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	Notes        string          `json:"notes" gorm:"type:text"`
	Date         time.Time       `json:"date" gorm:"not null;index"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
