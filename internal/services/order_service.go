package services

import (
	"context"
	"errors"
	"time"

	"business_manager/internal/apperrors"
	"business_manager/internal/inventory"
	"business_manager/internal/models"
	"business_manager/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// createAttempts bounds how often a creation is retried when the insert hits
// a unique constraint raced by a concurrent transaction.
const createAttempts = 3

type OrderService interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, code string) (*models.Order, error)
	ListOrders(ctx context.Context, query OrderQuery) ([]models.Order, int64, error)
	AddAmountPaid(ctx context.Context, code string, amount decimal.Decimal, paymentType models.PaymentType) (*models.Order, error)
	SetAmountPaid(ctx context.Context, code string, amount decimal.Decimal, paymentType models.PaymentType) (*models.Order, error)
	UpdateStatus(ctx context.Context, code string, status models.OrderStatus) (*models.Order, error)
	EditOrder(ctx context.Context, code string, input EditOrderInput) (*models.Order, error)
	DeleteOrder(ctx context.Context, code string) error
}

type OrderQuery struct {
	BusinessLine  models.BusinessLine
	Shop          models.Shop
	Status        models.OrderStatus
	PaymentStatus models.PaymentStatus
	CustomerID    uint
	From          *time.Time
	To            *time.Time
	Page          int
	Limit         int
}

// CacheInvalidator is notified after every committed order mutation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type orderService struct {
	repos         *repository.Repositories
	notifications NotificationService
	cache         CacheInvalidator
	logger        *zap.Logger
	codes         codeGenerator
	now           func() time.Time
}

func NewOrderService(repos *repository.Repositories, notifications NotificationService, cache CacheInvalidator, logger *zap.Logger) OrderService {
	return &orderService{
		repos:         repos,
		notifications: notifications,
		cache:         cache,
		logger:        logger,
		codes:         codeGenerator{suffix: randomCodeSuffix},
		now:           time.Now,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var order *models.Order
	var err error
	for attempt := 1; attempt <= createAttempts; attempt++ {
		order, err = s.createOnce(ctx, input)
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		s.logger.Warn("order creation hit a unique constraint, retrying", zap.Int("attempt", attempt))
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_code", order.Code),
		zap.String("shop", string(order.Shop)),
		zap.String("total_price", order.TotalPrice.String()))
	s.invalidate(ctx)
	s.notifications.OrderReceived(order)
	return order, nil
}

func (s *orderService) createOnce(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	var order *models.Order
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		customer, err := findOrCreateCustomer(tx.Customers, input.Customer)
		if err != nil {
			return err
		}

		ledger := inventory.NewLedger(tx.Items)
		if err := lockLines(ledger, input.Items); err != nil {
			return err
		}

		lines := make([]models.OrderItem, 0, len(input.Items))
		var violations []*apperrors.InsufficientStockError
		for i, in := range input.Items {
			in.ID = 0
			line, err := buildLine(ledger, i, in)
			if err != nil {
				return err
			}
			lines = append(lines, line)

			if id := line.StockItemID(); id != 0 {
				if err := refuseHidden(ledger, i, id); err != nil {
					return err
				}
				err := ledger.Reserve(id, line.Quantity)
				var short *apperrors.InsufficientStockError
				switch {
				case err == nil:
				case errors.As(err, &short):
					violations = append(violations, short)
				default:
					return err
				}
			}
		}
		if len(violations) > 0 {
			return &apperrors.StockUnavailableError{Violations: violations}
		}

		order = &models.Order{
			CustomerID:     customer.ID,
			Shop:           input.Shop,
			BusinessLine:   input.Shop.BusinessLine(),
			DeliveryDate:   normalizeDate(input.DeliveryDate, s.now()),
			Status:         models.OrderPending,
			PaymentType:    input.PaymentType,
			AddressDetails: input.AddressDetails,
			CreatedBy:      input.CreatedBy,
			Items:          lines,
		}
		order.Recalculate()
		order.ApplyPayment(input.AmountPaid)

		order.Code, err = s.codes.Generate(order.BusinessLine.CodePrefix(), tx.Orders.ExistsByCode)
		if err != nil {
			return err
		}
		if err := tx.Orders.Create(order); err != nil {
			return err
		}
		if err := ledger.Flush(); err != nil {
			return err
		}
		order.Customer = *customer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, code string) (*models.Order, error) {
	return s.repos.WithContext(ctx).Orders.GetByCode(code)
}

func (s *orderService) ListOrders(ctx context.Context, query OrderQuery) ([]models.Order, int64, error) {
	if query.Limit <= 0 || query.Limit > 100 {
		query.Limit = 20
	}
	if query.Page < 1 {
		query.Page = 1
	}
	filter := repository.OrderFilter{
		BusinessLine:  query.BusinessLine,
		Shop:          query.Shop,
		Status:        query.Status,
		PaymentStatus: query.PaymentStatus,
		CustomerID:    query.CustomerID,
		Delivery:      inclusiveRange(query.From, query.To),
		NewestFirst:   true,
		Page:          repository.Page{Offset: (query.Page - 1) * query.Limit, Limit: query.Limit},
	}

	repos := s.repos.WithContext(ctx)
	total, err := repos.Orders.Count(filter)
	if err != nil {
		return nil, 0, err
	}
	orders, err := repos.Orders.Find(filter)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (s *orderService) AddAmountPaid(ctx context.Context, code string, amount decimal.Decimal, paymentType models.PaymentType) (*models.Order, error) {
	if amount.IsNegative() {
		return nil, apperrors.Invalid("amount", "must not be negative")
	}
	return s.mutate(ctx, code, func(tx *repository.Repositories, order *models.Order) error {
		return applyPayment(tx, order, order.AmountPaid.Add(amount), paymentType)
	})
}

func (s *orderService) SetAmountPaid(ctx context.Context, code string, amount decimal.Decimal, paymentType models.PaymentType) (*models.Order, error) {
	if amount.IsNegative() {
		return nil, apperrors.Invalid("amount_paid", "must not be negative")
	}
	return s.mutate(ctx, code, func(tx *repository.Repositories, order *models.Order) error {
		return applyPayment(tx, order, amount, paymentType)
	})
}

// applyPayment records a new amount paid on a locked order and persists the
// rederived totals.
func applyPayment(tx *repository.Repositories, order *models.Order, amountPaid decimal.Decimal, paymentType models.PaymentType) error {
	if !paymentType.Valid() {
		return apperrors.Invalid("payment_type", "unknown payment type %q", paymentType)
	}
	if paymentType != models.PaymentUnset {
		order.PaymentType = paymentType
	}
	order.Recalculate()
	order.ApplyPayment(amountPaid)
	return tx.Orders.UpdateState(order)
}

func (s *orderService) UpdateStatus(ctx context.Context, code string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperrors.Invalid("order_status", "unknown status %q", status)
	}

	changed := false
	order, err := s.mutate(ctx, code, func(tx *repository.Repositories, order *models.Order) error {
		if order.Status == status {
			return nil
		}
		if !order.Status.CanTransitionTo(status) {
			return apperrors.ErrInvalidStatusTransition
		}
		order.PreviousStatus = order.Status
		order.Status = status
		changed = true
		return tx.Orders.UpdateState(order)
	})
	if err != nil || !changed {
		return order, err
	}

	s.logger.Info("order status changed",
		zap.String("order_code", order.Code),
		zap.String("from", string(order.PreviousStatus)),
		zap.String("to", string(order.Status)))
	switch order.Status {
	case models.OrderCompleted:
		s.notifications.OrderCompleted(order)
	case models.OrderDelivered:
		s.notifications.OrderDelivered(order)
	}
	return order, nil
}

// EditOrder reconciles the order's lines with input and moves stock for the
// difference. Either every line change and stock move commits or none does.
func (s *orderService) EditOrder(ctx context.Context, code string, input EditOrderInput) (*models.Order, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	order, err := s.mutate(ctx, code, func(tx *repository.Repositories, order *models.Order) error {
		ledger := inventory.NewLedger(tx.Items)
		existing := make([]uint, 0, len(order.Items))
		current := make(map[uint]uint, len(order.Items))
		for _, line := range order.Items {
			existing = append(existing, line.StockItemID())
			current[line.ID] = line.StockItemID()
		}
		if err := lockLines(ledger, input.Items, existing...); err != nil {
			return err
		}

		desired := make([]models.OrderItem, 0, len(input.Items))
		for i, in := range input.Items {
			line, err := buildLine(ledger, i, in)
			if err != nil {
				return err
			}
			desired = append(desired, line)
		}
		// Only new lines and lines switching item take fresh stock of a
		// possibly hidden item; unknown line ids are left to PlanEdit.
		for i, line := range desired {
			if line.ID != 0 {
				if old, ok := current[line.ID]; !ok || old == line.StockItemID() {
					continue
				}
			}
			if err := refuseHidden(ledger, i, line.StockItemID()); err != nil {
				return err
			}
		}

		plan, err := PlanEdit(order.Items, desired)
		if err != nil {
			return err
		}
		if err := plan.Apply(ledger); err != nil {
			return err
		}

		for _, line := range plan.Removed {
			if err := tx.OrderItems.Delete(line.ID); err != nil {
				return err
			}
		}
		for i := range plan.Updated {
			if err := tx.OrderItems.Update(&plan.Updated[i]); err != nil {
				return err
			}
		}
		for i := range plan.Added {
			plan.Added[i].OrderID = order.ID
			if err := tx.OrderItems.Create(&plan.Added[i]); err != nil {
				return err
			}
		}
		if err := ledger.Flush(); err != nil {
			return err
		}

		if input.DeliveryDate != nil {
			order.DeliveryDate = normalizeDate(input.DeliveryDate, s.now())
		}
		if input.AddressDetails != nil {
			order.AddressDetails = *input.AddressDetails
		}
		order.Items = plan.Lines()
		order.Recalculate()
		return tx.Orders.UpdateState(order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order edited",
		zap.String("order_code", order.Code),
		zap.Int("lines", len(order.Items)),
		zap.String("total_price", order.TotalPrice.String()))
	return order, nil
}

// DeleteOrder removes the order and its lines and returns their stock.
func (s *orderService) DeleteOrder(ctx context.Context, code string) error {
	_, err := s.mutate(ctx, code, func(tx *repository.Repositories, order *models.Order) error {
		ledger := inventory.NewLedger(tx.Items)
		ids := make([]uint, 0, len(order.Items))
		for _, line := range order.Items {
			ids = append(ids, line.StockItemID())
		}
		if err := ledger.Lock(ids...); err != nil {
			return err
		}
		for _, line := range order.Items {
			if id := line.StockItemID(); id != 0 {
				if err := ledger.Release(id, line.Quantity); err != nil {
					return err
				}
			}
		}
		if err := ledger.Flush(); err != nil {
			return err
		}
		return tx.Orders.Delete(order)
	})
	if err != nil {
		return err
	}
	s.logger.Info("order deleted", zap.String("order_code", code))
	return nil
}

// mutate runs fn on the order locked inside a transaction and drops cached
// reports once the transaction has committed.
func (s *orderService) mutate(ctx context.Context, code string, fn func(tx *repository.Repositories, order *models.Order) error) (*models.Order, error) {
	var order *models.Order
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		order, err = tx.Orders.GetByCodeForUpdate(code)
		if err != nil {
			return err
		}
		return fn(tx, order)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return order, nil
}

func (s *orderService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate analytics cache", zap.Error(err))
	}
}

// inclusiveRange converts inclusive calendar dates into [From, Until).
func inclusiveRange(from, to *time.Time) repository.DateRange {
	var r repository.DateRange
	if from != nil && !from.IsZero() {
		r.From = models.StartOfDay(*from)
	}
	if to != nil && !to.IsZero() {
		r.Until = models.StartOfDay(*to).AddDate(0, 0, 1)
	}
	return r
}
