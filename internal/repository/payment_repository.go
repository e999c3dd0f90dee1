package repository

import (
	"business_manager/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	Create(txn *models.PaymentTransaction) error
	GetByReferenceForUpdate(reference string) (*models.PaymentTransaction, error)
	ListByOrder(orderID uint) ([]models.PaymentTransaction, error)
	Update(txn *models.PaymentTransaction) error
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(txn *models.PaymentTransaction) error {
	return r.db.Create(txn).Error
}

func (r *paymentRepository) GetByReferenceForUpdate(reference string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("reference = ?", reference).First(&txn).Error
	if err != nil {
		return nil, translate(err)
	}
	return &txn, nil
}

func (r *paymentRepository) ListByOrder(orderID uint) ([]models.PaymentTransaction, error) {
	var txns []models.PaymentTransaction
	err := r.db.Where("order_id = ?", orderID).Order("id").Find(&txns).Error
	return txns, err
}

func (r *paymentRepository) Update(txn *models.PaymentTransaction) error {
	return r.db.Save(txn).Error
}
