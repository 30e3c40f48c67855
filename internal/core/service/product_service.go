package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fsk/redis-orders/internal/core/domain"
	"github.com/fsk/redis-orders/internal/port"
)

// ProductService is plain CRUD plumbing over the product repository.
type ProductService struct {
	products port.ProductRepository
}

func NewProductService(products port.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

func (s *ProductService) Create(ctx context.Context, name string, price decimal.Decimal, stock int64) (domain.Product, error) {
	p := domain.Product{
		ID:    uuid.NewString(),
		Name:  name,
		Price: price,
		Stock: stock,
	}
	if err := s.products.Save(ctx, p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (s *ProductService) GetByID(ctx context.Context, id string) (domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *ProductService) GetAll(ctx context.Context) ([]domain.Product, error) {
	return s.products.FindAll(ctx)
}

func (s *ProductService) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	if _, err := s.products.FindByID(ctx, p.ID); err != nil {
		return domain.Product{}, err
	}
	if err := s.products.Save(ctx, p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (s *ProductService) DeleteByID(ctx context.Context, id string) error {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return err
	}
	return s.products.DeleteByID(ctx, id)
}
