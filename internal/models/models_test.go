package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivePaymentStatus(t *testing.T) {
	tests := []struct {
		total, paid int64
		want        PaymentStatus
	}{
		{total: 20, paid: 0, want: PaymentPending},
		{total: 20, paid: 5, want: PaymentPartial},
		{total: 20, paid: 20, want: PaymentCompleted},
		{total: 20, paid: 25, want: PaymentCompleted},
		{total: 0, paid: 0, want: PaymentPending},
	}
	for _, tt := range tests {
		got := DerivePaymentStatus(decimal.NewFromInt(tt.total), decimal.NewFromInt(tt.paid))
		assert.Equal(t, tt.want, got, "total %d paid %d", tt.total, tt.paid)
	}
}

func TestOrderRecalculateKeepsDerivedFieldsInStep(t *testing.T) {
	order := &Order{Items: []OrderItem{
		{Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
		{Quantity: 3, UnitPrice: decimal.RequireFromString("2.50")},
	}}
	order.Recalculate()
	order.ApplyPayment(decimal.NewFromInt(5))

	assert.True(t, decimal.RequireFromString("27.50").Equal(order.TotalPrice))
	assert.True(t, decimal.RequireFromString("7.50").Equal(order.Items[1].ExtendedPrice))
	assert.True(t, order.TotalPrice.Sub(order.AmountPaid).Equal(order.Balance))
	assert.Equal(t, PaymentPartial, order.PaymentStatus)

	order.Items = order.Items[:1]
	order.Recalculate()
	assert.True(t, decimal.NewFromInt(15).Equal(order.Balance))
	assert.True(t, order.LineTotal().Equal(order.TotalPrice))
}

func TestIsOverdue(t *testing.T) {
	today := time.Date(2026, time.June, 15, 18, 0, 0, 0, time.UTC)
	order := Order{
		DeliveryDate: time.Date(2026, time.June, 14, 0, 0, 0, 0, time.UTC),
		AmountPaid:   decimal.NewFromInt(10),
		Items:        []OrderItem{{Quantity: 1, UnitPrice: decimal.NewFromInt(30)}},
	}
	assert.True(t, order.IsOverdue(today))

	order.DeliveryDate = StartOfDay(today)
	assert.False(t, order.IsOverdue(today), "due today is not overdue")

	order.DeliveryDate = today.AddDate(0, 0, -3)
	order.AmountPaid = decimal.NewFromInt(30)
	assert.False(t, order.IsOverdue(today), "settled orders are never overdue")
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, OrderPending.CanTransitionTo(OrderCompleted))
	assert.True(t, OrderPending.CanTransitionTo(OrderDelivered))
	assert.False(t, OrderCompleted.CanTransitionTo(OrderDelivered))
	assert.False(t, OrderDelivered.CanTransitionTo(OrderPending))
	assert.False(t, OrderPending.CanTransitionTo(OrderPending))
}

func TestNormalizePhone(t *testing.T) {
	valid := map[string]string{
		"0712345678":     "+254712345678",
		"0112 345 678":   "+254112345678",
		"712345678":      "+254712345678",
		"254712345678":   "+254712345678",
		"+254712345678":  "+254712345678",
		"+1 (555) 0100":  "+15550100",
		"+44-20-7946-00": "+4420794600",
	}
	for in, want := range valid {
		got, err := NormalizePhone(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "12345", "07123456789", "+12", "07a2345678", "2547123"} {
		_, err := NormalizePhone(in)
		assert.ErrorIs(t, err, ErrInvalidPhone, in)
	}
}

func TestNormalizeNames(t *testing.T) {
	assert.Equal(t, "shirts, trousers, socks", NormalizeNames(" shirts ,trousers,, socks ,"))
	assert.Equal(t, "", NormalizeNames(" , ,"))
	assert.Equal(t, []string{"a", "b"}, (&OrderItem{ItemName: "a,b"}).Names())
}

func TestShopBusinessLine(t *testing.T) {
	assert.Equal(t, LineHotel, ShopHotel.BusinessLine())
	assert.Equal(t, LineLaundry, ShopB.BusinessLine())
	assert.Equal(t, "HTL", LineHotel.CodePrefix())
	assert.Equal(t, "ORD", LineLaundry.CodePrefix())
	assert.False(t, Shop("Shop C").Valid())
}
