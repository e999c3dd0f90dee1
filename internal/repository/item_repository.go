package repository

import (
	"business_manager/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemFilter struct {
	CategoryID    uint
	AvailableOnly bool
}

type ItemRepository interface {
	CreateCategory(category *models.FoodCategory) error
	GetCategoryByName(name string) (*models.FoodCategory, error)
	ListCategories() ([]models.FoodCategory, error)

	Create(item *models.SellableItem) error
	GetByID(id uint) (*models.SellableItem, error)
	GetForUpdate(id uint) (*models.SellableItem, error)
	List(filter ItemFilter) ([]models.SellableItem, error)
	UpdateDetails(item *models.SellableItem) error
	UpdateStock(item *models.SellableItem) error
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) CreateCategory(category *models.FoodCategory) error {
	return r.db.Create(category).Error
}

func (r *itemRepository) GetCategoryByName(name string) (*models.FoodCategory, error) {
	var category models.FoodCategory
	if err := r.db.Where("name = ?", name).First(&category).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (r *itemRepository) ListCategories() ([]models.FoodCategory, error) {
	var categories []models.FoodCategory
	err := r.db.Order("name").Find(&categories).Error
	return categories, err
}

func (r *itemRepository) Create(item *models.SellableItem) error {
	return r.db.Omit(clause.Associations).Create(item).Error
}

func (r *itemRepository) GetByID(id uint) (*models.SellableItem, error) {
	var item models.SellableItem
	if err := r.db.Preload("Category").First(&item, id).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// GetForUpdate reads the item holding a row lock until the surrounding
// transaction ends.
func (r *itemRepository) GetForUpdate(id uint) (*models.SellableItem, error) {
	var item models.SellableItem
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *itemRepository) List(filter ItemFilter) ([]models.SellableItem, error) {
	query := r.db.Preload("Category").Order("name")
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.AvailableOnly {
		query = query.Where("is_available = ?", true)
	}
	var items []models.SellableItem
	err := query.Find(&items).Error
	return items, err
}

// UpdateDetails writes the descriptive fields only; stock goes through
// UpdateStock.
func (r *itemRepository) UpdateDetails(item *models.SellableItem) error {
	return r.db.Model(item).Updates(map[string]interface{}{
		"name":        item.Name,
		"price":       item.Price,
		"category_id": item.CategoryID,
	}).Error
}

func (r *itemRepository) UpdateStock(item *models.SellableItem) error {
	return r.db.Model(item).Updates(map[string]interface{}{
		"quantity":     item.Quantity,
		"is_available": item.IsAvailable,
	}).Error
}
