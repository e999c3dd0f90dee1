package repository

import (
	"business_manager/internal/models"

	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(customer *models.Customer) error
	GetByID(id uint) (*models.Customer, error)
	GetByPhone(phone string) (*models.Customer, error)
	List(page Page) ([]models.Customer, error)
	Search(query string, page Page) ([]models.Customer, error)
	Update(customer *models.Customer) error
	Delete(id uint) error
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(customer *models.Customer) error {
	return r.db.Create(customer).Error
}

func (r *customerRepository) GetByID(id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, id).Error; err != nil {
		return nil, translate(err)
	}
	return &customer, nil
}

func (r *customerRepository) GetByPhone(phone string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.Where("phone = ?", phone).First(&customer).Error; err != nil {
		return nil, translate(err)
	}
	return &customer, nil
}

func (r *customerRepository) List(page Page) ([]models.Customer, error) {
	var customers []models.Customer
	err := page.apply(r.db.Order("name")).Find(&customers).Error
	return customers, err
}

func (r *customerRepository) Search(query string, page Page) ([]models.Customer, error) {
	var customers []models.Customer
	like := "%" + query + "%"
	err := page.apply(r.db.Where("name LIKE ? OR phone LIKE ?", like, like).Order("name")).
		Find(&customers).Error
	return customers, err
}

func (r *customerRepository) Update(customer *models.Customer) error {
	return r.db.Save(customer).Error
}

func (r *customerRepository) Delete(id uint) error {
	return r.db.Delete(&models.Customer{}, id).Error
}
