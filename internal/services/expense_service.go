package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"business_manager/internal/apperrors"
	"business_manager/internal/models"
	"business_manager/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ExpenseInput struct {
	CategoryID uint            `json:"category_id"`
	Shop       models.Shop     `json:"shop"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      string          `json:"notes"`
	Date       *time.Time      `json:"date"`
}

type ExpenseQuery struct {
	BusinessLine models.BusinessLine
	Shop         models.Shop
	CategoryID   uint
	From         *time.Time
	To           *time.Time
	Page         int
	Limit        int
}

type ExpenseService interface {
	CreateCategory(ctx context.Context, label string) (*models.ExpenseCategory, error)
	ListCategories(ctx context.Context) ([]models.ExpenseCategory, error)
	RenameCategory(ctx context.Context, id uint, label string) (*models.ExpenseCategory, error)
	DeleteCategory(ctx context.Context, id uint) error

	CreateRecord(ctx context.Context, input ExpenseInput) (*models.ExpenseRecord, error)
	GetRecord(ctx context.Context, id uint) (*models.ExpenseRecord, error)
	UpdateRecord(ctx context.Context, id uint, input ExpenseInput) (*models.ExpenseRecord, error)
	DeleteRecord(ctx context.Context, id uint) error
	ListRecords(ctx context.Context, query ExpenseQuery) ([]models.ExpenseRecord, error)
}

type expenseService struct {
	repos  *repository.Repositories
	cache  CacheInvalidator
	logger *zap.Logger
	now    func() time.Time
}

func NewExpenseService(repos *repository.Repositories, cache CacheInvalidator, logger *zap.Logger) ExpenseService {
	return &expenseService{repos: repos, cache: cache, logger: logger, now: time.Now}
}

func (s *expenseService) CreateCategory(ctx context.Context, label string) (*models.ExpenseCategory, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, apperrors.Invalid("label", "is required")
	}
	category := &models.ExpenseCategory{Label: label}
	if err := s.repos.WithContext(ctx).Expenses.CreateCategory(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *expenseService) ListCategories(ctx context.Context) ([]models.ExpenseCategory, error) {
	return s.repos.WithContext(ctx).Expenses.ListCategories()
}

func (s *expenseService) RenameCategory(ctx context.Context, id uint, label string) (*models.ExpenseCategory, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, apperrors.Invalid("label", "is required")
	}
	repos := s.repos.WithContext(ctx)
	category, err := repos.Expenses.GetCategory(id)
	if err != nil {
		return nil, err
	}
	category.Label = label
	if err := repos.Expenses.UpdateCategory(category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory fails with CategoryInUseError while records reference the
// category.
func (s *expenseService) DeleteCategory(ctx context.Context, id uint) error {
	return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		category, err := tx.Expenses.GetCategoryForUpdate(id)
		if err != nil {
			return err
		}
		count, err := tx.Expenses.CountRecordsByCategory(id)
		if err != nil {
			return err
		}
		if count > 0 {
			return &apperrors.CategoryInUseError{CategoryID: id, Label: category.Label, Count: count}
		}
		return tx.Expenses.DeleteCategory(id)
	})
}

func (s *expenseService) CreateRecord(ctx context.Context, input ExpenseInput) (*models.ExpenseRecord, error) {
	record := &models.ExpenseRecord{}
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := s.fill(tx, record, input); err != nil {
			return err
		}
		return tx.Expenses.CreateRecord(record)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("expense recorded",
		zap.Uint("expense_id", record.ID),
		zap.String("shop", string(record.Shop)),
		zap.String("amount", record.Amount.String()))
	s.invalidate(ctx)
	return record, nil
}

func (s *expenseService) GetRecord(ctx context.Context, id uint) (*models.ExpenseRecord, error) {
	return s.repos.WithContext(ctx).Expenses.GetRecord(id)
}

func (s *expenseService) UpdateRecord(ctx context.Context, id uint, input ExpenseInput) (*models.ExpenseRecord, error) {
	var record *models.ExpenseRecord
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		if record, err = tx.Expenses.GetRecord(id); err != nil {
			return err
		}
		if input.Date == nil {
			date := record.Date
			input.Date = &date
		}
		if err := s.fill(tx, record, input); err != nil {
			return err
		}
		return tx.Expenses.UpdateRecord(record)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return record, nil
}

func (s *expenseService) DeleteRecord(ctx context.Context, id uint) error {
	repos := s.repos.WithContext(ctx)
	if _, err := repos.Expenses.GetRecord(id); err != nil {
		return err
	}
	if err := repos.Expenses.DeleteRecord(id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *expenseService) ListRecords(ctx context.Context, query ExpenseQuery) ([]models.ExpenseRecord, error) {
	page := repository.Page{}
	if query.Limit > 0 {
		if query.Page < 1 {
			query.Page = 1
		}
		page = repository.Page{Offset: (query.Page - 1) * query.Limit, Limit: query.Limit}
	}
	return s.repos.WithContext(ctx).Expenses.FindRecords(repository.ExpenseFilter{
		BusinessLine: query.BusinessLine,
		Shop:         query.Shop,
		CategoryID:   query.CategoryID,
		Dates:        inclusiveRange(query.From, query.To),
		Page:         page,
	})
}

func (s *expenseService) fill(tx *repository.Repositories, record *models.ExpenseRecord, input ExpenseInput) error {
	if !input.Shop.Valid() {
		return apperrors.Invalid("shop", "unknown shop %q", input.Shop)
	}
	if !input.Amount.IsPositive() {
		return apperrors.Invalid("amount", "must be greater than zero")
	}
	category, err := tx.Expenses.GetCategory(input.CategoryID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.Invalid("category_id", "expense category %d does not exist", input.CategoryID)
	}
	if err != nil {
		return err
	}

	record.CategoryID = category.ID
	record.Category = *category
	record.Shop = input.Shop
	record.BusinessLine = input.Shop.BusinessLine()
	record.Amount = input.Amount
	record.Notes = strings.TrimSpace(input.Notes)
	record.Date = normalizeDate(input.Date, s.now())
	return nil
}

func (s *expenseService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate analytics cache", zap.Error(err))
	}
}
