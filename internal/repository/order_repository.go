package repository

import (
	"business_manager/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderFilter struct {
	BusinessLine  models.BusinessLine
	Shop          models.Shop
	Status        models.OrderStatus
	PaymentStatus models.PaymentStatus
	CustomerID    uint
	Delivery      DateRange
	Page          Page
	// NewestFirst orders by delivery date descending instead of ascending.
	NewestFirst bool
}

type OrderRepository interface {
	Create(order *models.Order) error
	ExistsByCode(code string) (bool, error)
	GetByCode(code string) (*models.Order, error)
	GetByCodeForUpdate(code string) (*models.Order, error)
	Find(filter OrderFilter) ([]models.Order, error)
	Count(filter OrderFilter) (int64, error)
	CountByCustomer(customerID uint) (int64, error)
	UpdateState(order *models.Order) error
	Delete(order *models.Order) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order row and then its lines. Associated customers and
// items are never written through an order.
func (r *orderRepository) Create(order *models.Order) error {
	if err := r.db.Omit(clause.Associations).Create(order).Error; err != nil {
		return err
	}
	if len(order.Items) == 0 {
		return nil
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	return r.db.Omit(clause.Associations).Create(&order.Items).Error
}

func (r *orderRepository) ExistsByCode(code string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Order{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *orderRepository) GetByCode(code string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Customer").Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).Where("code = ?", code).First(&order).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// GetByCodeForUpdate locks the order row so concurrent edits of the same
// order run one after another.
func (r *orderRepository) GetByCodeForUpdate(code string) (*models.Order, error) {
	var order models.Order
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("code = ?", code).First(&order).Error
	if err != nil {
		return nil, translate(err)
	}
	if err := r.db.Where("order_id = ?", order.ID).Order("id").Find(&order.Items).Error; err != nil {
		return nil, err
	}
	if err := r.db.First(&order.Customer, order.CustomerID).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *orderRepository) scoped(filter OrderFilter) *gorm.DB {
	query := r.db.Model(&models.Order{})
	if filter.BusinessLine != "" {
		query = query.Where("business_line = ?", filter.BusinessLine)
	}
	if filter.Shop != "" {
		query = query.Where("shop = ?", filter.Shop)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	return filter.Delivery.apply(query, "delivery_date")
}

func (r *orderRepository) Find(filter OrderFilter) ([]models.Order, error) {
	order := "delivery_date, id"
	if filter.NewestFirst {
		order = "delivery_date DESC, id DESC"
	}
	query := filter.Page.apply(r.scoped(filter).Order(order))

	var orders []models.Order
	err := query.Preload("Customer").Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Count(filter OrderFilter) (int64, error) {
	var count int64
	err := r.scoped(filter).Count(&count).Error
	return count, err
}

func (r *orderRepository) CountByCustomer(customerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).Where("customer_id = ?", customerID).Count(&count).Error
	return count, err
}

// UpdateState writes the mutable and derived order columns.
func (r *orderRepository) UpdateState(order *models.Order) error {
	return r.db.Model(order).Updates(map[string]interface{}{
		"status":          order.Status,
		"previous_status": order.PreviousStatus,
		"payment_status":  order.PaymentStatus,
		"payment_type":    order.PaymentType,
		"amount_paid":     order.AmountPaid,
		"total_price":     order.TotalPrice,
		"balance":         order.Balance,
		"delivery_date":   order.DeliveryDate,
		"address_details": order.AddressDetails,
	}).Error
}

// Delete removes the order together with its lines.
func (r *orderRepository) Delete(order *models.Order) error {
	if err := r.db.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Order{}, order.ID).Error
}
