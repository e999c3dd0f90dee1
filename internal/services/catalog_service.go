package services

import (
	"context"
	"errors"
	"strings"

	"business_manager/internal/apperrors"
	"business_manager/internal/inventory"
	"business_manager/internal/models"
	"business_manager/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CreateItemInput struct {
	CategoryName string          `json:"category"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Hidden       bool            `json:"hidden"`
}

type UpdateItemInput struct {
	CategoryName string          `json:"category"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
}

// CatalogService manages sellable items. Stock changes go through the
// inventory ledger.
type CatalogService interface {
	CreateCategory(ctx context.Context, name string) (*models.FoodCategory, error)
	ListCategories(ctx context.Context) ([]models.FoodCategory, error)
	CreateItem(ctx context.Context, input CreateItemInput) (*models.SellableItem, error)
	GetItem(ctx context.Context, id uint) (*models.SellableItem, error)
	ListItems(ctx context.Context, filter repository.ItemFilter) ([]models.SellableItem, error)
	UpdateItemDetails(ctx context.Context, id uint, input UpdateItemInput) (*models.SellableItem, error)
	Restock(ctx context.Context, id uint, qty int) (*models.SellableItem, error)
	SetAvailability(ctx context.Context, id uint, available bool) (*models.SellableItem, error)
}

type catalogService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewCatalogService(repos *repository.Repositories, logger *zap.Logger) CatalogService {
	return &catalogService{repos: repos, logger: logger}
}

func (s *catalogService) CreateCategory(ctx context.Context, name string) (*models.FoodCategory, error) {
	var category *models.FoodCategory
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		category, err = categoryByName(tx.Items, name)
		return err
	})
	return category, err
}

func (s *catalogService) ListCategories(ctx context.Context) ([]models.FoodCategory, error) {
	return s.repos.WithContext(ctx).Items.ListCategories()
}

func (s *catalogService) CreateItem(ctx context.Context, input CreateItemInput) (*models.SellableItem, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.Invalid("name", "is required")
	}
	if input.Price.IsNegative() {
		return nil, apperrors.Invalid("price", "must not be negative")
	}
	if input.Quantity < 0 {
		return nil, apperrors.Invalid("quantity", "must not be negative")
	}

	var item *models.SellableItem
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		category, err := categoryByName(tx.Items, input.CategoryName)
		if err != nil {
			return err
		}
		item = &models.SellableItem{CategoryID: category.ID, Name: name, Price: input.Price}
		if err := inventory.Release(item, input.Quantity); err != nil {
			return err
		}
		if input.Hidden {
			if err := inventory.SetAvailability(item, false); err != nil {
				return err
			}
		}
		if err := tx.Items.Create(item); err != nil {
			return err
		}
		item.Category = *category
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("catalog item created", zap.Uint("item_id", item.ID), zap.Int("quantity", item.Quantity))
	return item, nil
}

func (s *catalogService) GetItem(ctx context.Context, id uint) (*models.SellableItem, error) {
	return s.repos.WithContext(ctx).Items.GetByID(id)
}

func (s *catalogService) ListItems(ctx context.Context, filter repository.ItemFilter) ([]models.SellableItem, error) {
	return s.repos.WithContext(ctx).Items.List(filter)
}

func (s *catalogService) UpdateItemDetails(ctx context.Context, id uint, input UpdateItemInput) (*models.SellableItem, error) {
	if input.Price.IsNegative() {
		return nil, apperrors.Invalid("price", "must not be negative")
	}
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		item, err := tx.Items.GetForUpdate(id)
		if err != nil {
			return err
		}
		if name := strings.TrimSpace(input.Name); name != "" {
			item.Name = name
		}
		if input.CategoryName != "" {
			category, err := categoryByName(tx.Items, input.CategoryName)
			if err != nil {
				return err
			}
			item.CategoryID = category.ID
		}
		item.Price = input.Price
		return tx.Items.UpdateDetails(item)
	})
	if err != nil {
		return nil, err
	}
	return s.GetItem(ctx, id)
}

// Restock releases qty units into stock.
func (s *catalogService) Restock(ctx context.Context, id uint, qty int) (*models.SellableItem, error) {
	if qty <= 0 {
		return nil, apperrors.Invalid("quantity", "must be at least 1")
	}
	return s.adjust(ctx, id, func(ledger *inventory.Ledger) error {
		return ledger.Release(id, qty)
	})
}

func (s *catalogService) SetAvailability(ctx context.Context, id uint, available bool) (*models.SellableItem, error) {
	return s.adjust(ctx, id, func(ledger *inventory.Ledger) error {
		item, err := ledger.Item(id)
		if err != nil {
			return err
		}
		return inventory.SetAvailability(item, available)
	})
}

func (s *catalogService) adjust(ctx context.Context, id uint, fn func(ledger *inventory.Ledger) error) (*models.SellableItem, error) {
	var item *models.SellableItem
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		ledger := inventory.NewLedger(tx.Items)
		var err error
		if item, err = ledger.Item(id); err != nil {
			return err
		}
		if err := fn(ledger); err != nil {
			return err
		}
		return tx.Items.UpdateStock(item)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("stock adjusted",
		zap.Uint("item_id", id),
		zap.Int("quantity", item.Quantity),
		zap.Bool("is_available", item.IsAvailable))
	return item, nil
}

func categoryByName(repo repository.ItemRepository, name string) (*models.FoodCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Invalid("category", "is required")
	}
	category, err := repo.GetCategoryByName(name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	category = &models.FoodCategory{Name: name}
	if err := repo.CreateCategory(category); err != nil {
		return nil, err
	}
	return category, nil
}
