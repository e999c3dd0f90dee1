package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	Code           string          `json:"code" gorm:"size:32;uniqueIndex;not null"`
	CustomerID     uint            `json:"customer_id" gorm:"not null;index"`
	Customer       Customer        `json:"customer"`
	Shop           Shop            `json:"shop" gorm:"size:32;not null;index"`
	BusinessLine   BusinessLine    `json:"business_line" gorm:"size:16;not null;index"`
	DeliveryDate   time.Time       `json:"delivery_date" gorm:"not null;index"`
	Status         OrderStatus     `json:"order_status" gorm:"size:16;not null;default:'pending'"`
	PreviousStatus OrderStatus     `json:"previous_order_status" gorm:"size:16"`
	PaymentStatus  PaymentStatus   `json:"payment_status" gorm:"size:16;not null;default:'pending';index"`
	PaymentType    PaymentType     `json:"payment_type" gorm:"size:20"`
	AmountPaid     decimal.Decimal `json:"amount_paid" gorm:"type:numeric(12,2);not null;default:0"`
	TotalPrice     decimal.Decimal `json:"total_price" gorm:"type:numeric(12,2);not null;default:0"`
	Balance        decimal.Decimal `json:"balance" gorm:"type:numeric(12,2);not null;default:0"`
	AddressDetails string          `json:"address_details" gorm:"type:text"`
	CreatedBy      string          `json:"created_by" gorm:"size:100"`
	Items          []OrderItem     `json:"items"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderDelivered OrderStatus = "delivered"
)

// OrderStatuses lists every order status in reporting order.
var OrderStatuses = []OrderStatus{OrderPending, OrderCompleted, OrderDelivered}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderCompleted, OrderDelivered:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order in status s may move to next.
// Completed and delivered are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s != OrderPending {
		return false
	}
	return next == OrderCompleted || next == OrderDelivered
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPartial   PaymentStatus = "partial"
	PaymentCompleted PaymentStatus = "completed"
)

type PaymentType string

const (
	PaymentUnset        PaymentType = ""
	PaymentCash         PaymentType = "cash"
	PaymentMpesa        PaymentType = "mpesa"
	PaymentCard         PaymentType = "card"
	PaymentBankTransfer PaymentType = "bank_transfer"
	PaymentOther        PaymentType = "other"
)

// PaymentTypes is the fixed bucket list used by reports; unset is last.
var PaymentTypes = []PaymentType{PaymentCash, PaymentMpesa, PaymentCard, PaymentBankTransfer, PaymentOther, PaymentUnset}

func (p PaymentType) Valid() bool {
	switch p {
	case PaymentUnset, PaymentCash, PaymentMpesa, PaymentCard, PaymentBankTransfer, PaymentOther:
		return true
	}
	return false
}

// Label is the report key for the payment type.
func (p PaymentType) Label() string {
	if p == PaymentUnset {
		return "unset"
	}
	return string(p)
}

// DerivePaymentStatus is the only source of an order's payment status.
func DerivePaymentStatus(totalPrice, amountPaid decimal.Decimal) PaymentStatus {
	if amountPaid.IsZero() {
		return PaymentPending
	}
	if totalPrice.Sub(amountPaid).IsPositive() {
		return PaymentPartial
	}
	return PaymentCompleted
}

// Recalculate recomputes every line's extended price, then the order total
// from the sum over all current lines, then balance and payment status.
func (o *Order) Recalculate() {
	total := decimal.Zero
	for i := range o.Items {
		o.Items[i].Recalculate()
		total = total.Add(o.Items[i].ExtendedPrice)
	}
	o.TotalPrice = total
	o.refreshPayment()
}

// ApplyPayment sets the amount paid and rederives the dependent fields.
func (o *Order) ApplyPayment(amountPaid decimal.Decimal) {
	o.AmountPaid = amountPaid
	o.refreshPayment()
}

func (o *Order) refreshPayment() {
	o.Balance = o.TotalPrice.Sub(o.AmountPaid)
	o.PaymentStatus = DerivePaymentStatus(o.TotalPrice, o.AmountPaid)
}

// LineTotal sums extended prices without touching stored fields.
func (o *Order) LineTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Extended())
	}
	return total
}

// IsOverdue reports whether the delivery date is before today and money is
// still owed. It is independent of the stored payment status.
func (o *Order) IsOverdue(today time.Time) bool {
	return o.DeliveryDate.Before(StartOfDay(today)) && o.LineTotal().Sub(o.AmountPaid).IsPositive()
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
