package port

import (
	"context"

	"github.com/fsk/redis-orders/internal/core/domain"
)

type ProductRepository interface {
	FindByID(ctx context.Context, id string) (domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
	Save(ctx context.Context, p domain.Product) error
	DeleteByID(ctx context.Context, id string) error
}

type OrderRepository interface {
	FindByID(ctx context.Context, id string) (domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
	Save(ctx context.Context, o domain.Order) error
	DeleteByID(ctx context.Context, id string) error
}

type CustomerRepository interface {
	FindByID(ctx context.Context, id string) (domain.Customer, error)
	FindAll(ctx context.Context) ([]domain.Customer, error)
	Save(ctx context.Context, c domain.Customer) error
	DeleteByID(ctx context.Context, id string) error
}

// OrderArchive receives orders after they are committed to the store.
// Implementations must not take part in the atomic unit.
type OrderArchive interface {
	ArchiveOrder(ctx context.Context, o domain.Order) error
}
