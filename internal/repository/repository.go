package repository

import (
	"context"
	"errors"
	"time"

	"business_manager/internal/apperrors"

	"gorm.io/gorm"
)

// Repositories groups every repository over one *gorm.DB handle, which may
// be a transaction.
type Repositories struct {
	db         *gorm.DB
	Customers  CustomerRepository
	Items      ItemRepository
	Orders     OrderRepository
	OrderItems OrderItemRepository
	Expenses   ExpenseRepository
	Payments   PaymentRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:         db,
		Customers:  NewCustomerRepository(db),
		Items:      NewItemRepository(db),
		Orders:     NewOrderRepository(db),
		OrderItems: NewOrderItemRepository(db),
		Expenses:   NewExpenseRepository(db),
		Payments:   NewPaymentRepository(db),
	}
}

// WithContext scopes every repository to ctx.
func (r *Repositories) WithContext(ctx context.Context) *Repositories {
	return NewRepositories(r.db.WithContext(ctx))
}

// Transaction runs fn with repositories bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// Page is an offset/limit window. A zero Limit means no limit.
type Page struct {
	Offset int
	Limit  int
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	if p.Offset > 0 {
		db = db.Offset(p.Offset)
	}
	if p.Limit > 0 {
		db = db.Limit(p.Limit)
	}
	return db
}

// DateRange filters on [From, Until). Zero bounds are open.
type DateRange struct {
	From  time.Time
	Until time.Time
}

func (d DateRange) apply(db *gorm.DB, column string) *gorm.DB {
	if !d.From.IsZero() {
		db = db.Where(column+" >= ?", d.From)
	}
	if !d.Until.IsZero() {
		db = db.Where(column+" < ?", d.Until)
	}
	return db
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	return err
}
