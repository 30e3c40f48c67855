package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/fsk/redis-orders/internal/core/domain"
	"github.com/fsk/redis-orders/internal/port"
)

// CustomerService is plain CRUD plumbing over the customer repository.
type CustomerService struct {
	customers port.CustomerRepository
}

func NewCustomerService(customers port.CustomerRepository) *CustomerService {
	return &CustomerService{customers: customers}
}

func (s *CustomerService) Create(ctx context.Context, name, email, phone string) (domain.Customer, error) {
	c := domain.Customer{
		ID:    uuid.NewString(),
		Name:  name,
		Email: email,
		Phone: phone,
	}
	if err := s.customers.Save(ctx, c); err != nil {
		return domain.Customer{}, err
	}
	return c, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	return s.customers.FindByID(ctx, id)
}

func (s *CustomerService) GetAll(ctx context.Context) ([]domain.Customer, error) {
	return s.customers.FindAll(ctx)
}

func (s *CustomerService) DeleteByID(ctx context.Context, id string) error {
	if _, err := s.customers.FindByID(ctx, id); err != nil {
		return err
	}
	return s.customers.DeleteByID(ctx, id)
}
