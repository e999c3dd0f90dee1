package services

import (
	"context"
	"errors"
	"strings"

	"business_manager/internal/apperrors"
	"business_manager/internal/models"
	"business_manager/internal/repository"

	"go.uber.org/zap"
)

type CustomerService interface {
	FindOrCreate(ctx context.Context, input CustomerInput) (*models.Customer, error)
	GetCustomer(ctx context.Context, id uint) (*models.Customer, error)
	ListCustomers(ctx context.Context, page repository.Page) ([]models.Customer, error)
	SearchCustomers(ctx context.Context, query string, page repository.Page) ([]models.Customer, error)
	UpdateCustomer(ctx context.Context, id uint, input CustomerInput) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id uint) error
}

type customerService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewCustomerService(repos *repository.Repositories, logger *zap.Logger) CustomerService {
	return &customerService{repos: repos, logger: logger}
}

func (s *customerService) FindOrCreate(ctx context.Context, input CustomerInput) (*models.Customer, error) {
	var customer *models.Customer
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		customer, err = findOrCreateCustomer(tx.Customers, input)
		return err
	})
	return customer, err
}

func (s *customerService) GetCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	return s.repos.WithContext(ctx).Customers.GetByID(id)
}

func (s *customerService) ListCustomers(ctx context.Context, page repository.Page) ([]models.Customer, error) {
	return s.repos.WithContext(ctx).Customers.List(page)
}

func (s *customerService) SearchCustomers(ctx context.Context, query string, page repository.Page) ([]models.Customer, error) {
	return s.repos.WithContext(ctx).Customers.Search(strings.TrimSpace(query), page)
}

func (s *customerService) UpdateCustomer(ctx context.Context, id uint, input CustomerInput) (*models.Customer, error) {
	phone, err := normalizeCustomerPhone(input.Phone)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.Invalid("name", "is required")
	}

	repos := s.repos.WithContext(ctx)
	customer, err := repos.Customers.GetByID(id)
	if err != nil {
		return nil, err
	}
	customer.Name = strings.TrimSpace(input.Name)
	customer.Phone = phone
	customer.Address = strings.TrimSpace(input.Address)
	if err := repos.Customers.Update(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// DeleteCustomer refuses while any order references the customer.
func (s *customerService) DeleteCustomer(ctx context.Context, id uint) error {
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if _, err := tx.Customers.GetByID(id); err != nil {
			return err
		}
		count, err := tx.Orders.CountByCustomer(id)
		if err != nil {
			return err
		}
		if count > 0 {
			return &apperrors.CustomerHasOrdersError{CustomerID: id, Count: count}
		}
		return tx.Customers.Delete(id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("customer deleted", zap.Uint("customer_id", id))
	return nil
}

func normalizeCustomerPhone(raw string) (string, error) {
	phone, err := models.NormalizePhone(raw)
	if err != nil {
		return "", apperrors.Invalid("phone", "%q is not a valid phone number", raw)
	}
	return phone, nil
}

// findOrCreateCustomer looks the customer up by normalized phone and
// creates it on first use. An existing record keeps its stored name; a
// missing address is filled in.
func findOrCreateCustomer(repo repository.CustomerRepository, input CustomerInput) (*models.Customer, error) {
	phone, err := normalizeCustomerPhone(input.Phone)
	if err != nil {
		return nil, err
	}

	customer, err := repo.GetByPhone(phone)
	if err == nil {
		if customer.Address == "" && input.Address != "" {
			customer.Address = strings.TrimSpace(input.Address)
			if err := repo.Update(customer); err != nil {
				return nil, err
			}
		}
		return customer, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.Invalid("customer.name", "is required")
	}
	customer = &models.Customer{Name: name, Phone: phone, Address: strings.TrimSpace(input.Address)}
	if err := repo.Create(customer); err != nil {
		return nil, err
	}
	return customer, nil
}
