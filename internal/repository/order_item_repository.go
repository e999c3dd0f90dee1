package repository

import (
	"business_manager/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderItemRepository interface {
	Create(orderItem *models.OrderItem) error
	GetByID(id uint) (*models.OrderItem, error)
	GetByOrderID(orderID uint) ([]models.OrderItem, error)
	Update(orderItem *models.OrderItem) error
	Delete(id uint) error
}

type orderItemRepository struct {
	db *gorm.DB
}

func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) Create(orderItem *models.OrderItem) error {
	return r.db.Omit(clause.Associations).Create(orderItem).Error
}

func (r *orderItemRepository) GetByID(id uint) (*models.OrderItem, error) {
	var orderItem models.OrderItem
	if err := r.db.First(&orderItem, id).Error; err != nil {
		return nil, translate(err)
	}
	return &orderItem, nil
}

func (r *orderItemRepository) GetByOrderID(orderID uint) ([]models.OrderItem, error) {
	var orderItems []models.OrderItem
	err := r.db.Where("order_id = ?", orderID).Order("id").Find(&orderItems).Error
	return orderItems, err
}

func (r *orderItemRepository) Update(orderItem *models.OrderItem) error {
	return r.db.Omit(clause.Associations).Save(orderItem).Error
}

func (r *orderItemRepository) Delete(id uint) error {
	return r.db.Delete(&models.OrderItem{}, id).Error
}
