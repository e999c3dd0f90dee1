package services

import (
	"context"
	"fmt"

	"business_manager/internal/apperrors"
	"business_manager/internal/models"
	"business_manager/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentRequest is handed to the external gateway. Reference identifies the
// request when the gateway reports the outcome.
type PaymentRequest struct {
	Reference string
	OrderCode string
	Amount    decimal.Decimal
	Phone     string
}

// PaymentInitiator starts a mobile-money payment. The outcome arrives later
// through RecordResult.
type PaymentInitiator interface {
	Initiate(ctx context.Context, req PaymentRequest) error
}

type PaymentService interface {
	InitiatePayment(ctx context.Context, code string, amount decimal.Decimal, phone string) (*models.PaymentTransaction, error)
	RecordResult(ctx context.Context, reference string, success bool, receipt string) (*models.PaymentTransaction, error)
	ListTransactions(ctx context.Context, code string) ([]models.PaymentTransaction, error)
}

type paymentService struct {
	repos     *repository.Repositories
	initiator PaymentInitiator
	cache     CacheInvalidator
	logger    *zap.Logger
}

func NewPaymentService(repos *repository.Repositories, initiator PaymentInitiator, cache CacheInvalidator, logger *zap.Logger) PaymentService {
	return &paymentService{repos: repos, initiator: initiator, cache: cache, logger: logger}
}

func (s *paymentService) InitiatePayment(ctx context.Context, code string, amount decimal.Decimal, phone string) (*models.PaymentTransaction, error) {
	if !amount.IsPositive() {
		return nil, apperrors.Invalid("amount", "must be greater than zero")
	}

	var txn *models.PaymentTransaction
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		order, err := tx.Orders.GetByCodeForUpdate(code)
		if err != nil {
			return err
		}
		if phone == "" {
			phone = order.Customer.Phone
		}
		normalized, err := normalizeCustomerPhone(phone)
		if err != nil {
			return err
		}
		txn = &models.PaymentTransaction{
			Reference: uuid.NewString(),
			OrderID:   order.ID,
			OrderCode: order.Code,
			Amount:    amount,
			Phone:     normalized,
			Status:    models.TransactionPending,
		}
		return tx.Payments.Create(txn)
	})
	if err != nil {
		return nil, err
	}

	req := PaymentRequest{Reference: txn.Reference, OrderCode: txn.OrderCode, Amount: txn.Amount, Phone: txn.Phone}
	if err := s.initiator.Initiate(ctx, req); err != nil {
		s.logger.Warn("payment initiation failed",
			zap.String("order_code", txn.OrderCode),
			zap.String("reference", txn.Reference),
			zap.Error(err))
		txn.Status = models.TransactionFailed
		if uerr := s.repos.WithContext(ctx).Payments.Update(txn); uerr != nil {
			s.logger.Error("failed to mark payment as failed", zap.String("reference", txn.Reference), zap.Error(uerr))
		}
		return txn, fmt.Errorf("initiate payment %s: %w", txn.Reference, err)
	}

	s.logger.Info("payment initiated",
		zap.String("order_code", txn.OrderCode),
		zap.String("reference", txn.Reference),
		zap.String("amount", txn.Amount.String()))
	return txn, nil
}

// RecordResult settles a pending transaction. A success adds the amount to
// the order as a mobile-money payment. Settling twice is a no-op.
func (s *paymentService) RecordResult(ctx context.Context, reference string, success bool, receipt string) (*models.PaymentTransaction, error) {
	var txn *models.PaymentTransaction
	settled := false
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		if txn, err = tx.Payments.GetByReferenceForUpdate(reference); err != nil {
			return err
		}
		if txn.Status != models.TransactionPending {
			return nil
		}

		settled = true
		txn.Receipt = receipt
		if !success {
			txn.Status = models.TransactionFailed
			return tx.Payments.Update(txn)
		}

		order, err := tx.Orders.GetByCodeForUpdate(txn.OrderCode)
		if err != nil {
			return err
		}
		if err := applyPayment(tx, order, order.AmountPaid.Add(txn.Amount), models.PaymentMpesa); err != nil {
			return err
		}
		txn.Status = models.TransactionCompleted
		return tx.Payments.Update(txn)
	})
	if err != nil {
		return nil, err
	}
	if !settled {
		return txn, nil
	}

	s.logger.Info("payment settled",
		zap.String("order_code", txn.OrderCode),
		zap.String("reference", txn.Reference),
		zap.String("status", string(txn.Status)))
	if txn.Status == models.TransactionCompleted && s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("failed to invalidate analytics cache", zap.Error(err))
		}
	}
	return txn, nil
}

func (s *paymentService) ListTransactions(ctx context.Context, code string) ([]models.PaymentTransaction, error) {
	repos := s.repos.WithContext(ctx)
	order, err := repos.Orders.GetByCode(code)
	if err != nil {
		return nil, err
	}
	return repos.Payments.ListByOrder(order.ID)
}

// LogInitiator accepts every request and only logs it. It stands in for a
// gateway until one is configured; results are then recorded manually.
type LogInitiator struct {
	Logger *zap.Logger
}

func (l LogInitiator) Initiate(_ context.Context, req PaymentRequest) error {
	l.Logger.Info("payment request recorded without gateway",
		zap.String("reference", req.Reference),
		zap.String("order_code", req.OrderCode),
		zap.String("amount", req.Amount.String()),
		zap.String("phone", req.Phone))
	return nil
}
