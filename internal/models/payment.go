package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// PaymentTransaction records a payment request handed to the external
// initiator and its eventual outcome.
type PaymentTransaction struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	Reference string            `json:"reference" gorm:"size:64;uniqueIndex;not null"`
	OrderID   uint              `json:"order_id" gorm:"not null;index"`
	OrderCode string            `json:"order_code" gorm:"size:32;not null"`
	Amount    decimal.Decimal   `json:"amount" gorm:"type:numeric(12,2);not null"`
	Phone     string            `json:"phone" gorm:"size:20;not null"`
	Status    TransactionStatus `json:"status" gorm:"size:16;not null;default:'pending'"`
	Receipt   string            `json:"receipt" gorm:"size:64"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
