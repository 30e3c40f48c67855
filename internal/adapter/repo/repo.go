// Package repo holds the per-entity CRUD repositories: thin pass-throughs
// between the key-value store and the document codec.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsk/redis-orders/internal/core/codec"
	"github.com/fsk/redis-orders/internal/core/domain"
	"github.com/fsk/redis-orders/internal/port"
)

type ProductRepo struct {
	store port.KVStore
}

func NewProductRepo(store port.KVStore) *ProductRepo {
	return &ProductRepo{store: store}
}

func (r *ProductRepo) FindByID(ctx context.Context, id string) (domain.Product, error) {
	doc, err := r.store.GetDocument(ctx, domain.ProductKey(id))
	if errors.Is(err, domain.ErrKeyAbsent) {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Product{}, err
	}
	return codec.DecodeProduct(doc)
}

func (r *ProductRepo) FindAll(ctx context.Context) ([]domain.Product, error) {
	keys, err := r.store.Keys(ctx, domain.ProductKeyPrefix+"*")
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(keys))
	for _, key := range keys {
		doc, err := r.store.GetDocument(ctx, key)
		if errors.Is(err, domain.ErrKeyAbsent) {
			continue // deleted between KEYS and read
		}
		if err != nil {
			return nil, err
		}
		p, err := codec.DecodeProduct(doc)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *ProductRepo) Save(ctx context.Context, p domain.Product) error {
	return r.store.PutDocument(ctx, domain.ProductKey(p.ID), codec.EncodeProduct(p))
}

func (r *ProductRepo) DeleteByID(ctx context.Context, id string) error {
	return r.store.Delete(ctx, domain.ProductKey(id))
}

type OrderRepo struct {
	store port.KVStore
}

func NewOrderRepo(store port.KVStore) *OrderRepo {
	return &OrderRepo{store: store}
}

func (r *OrderRepo) FindByID(ctx context.Context, id string) (domain.Order, error) {
	doc, err := r.store.GetDocument(ctx, domain.OrderKey(id))
	if errors.Is(err, domain.ErrKeyAbsent) {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Order{}, err
	}
	return codec.DecodeOrder(doc)
}

func (r *OrderRepo) FindAll(ctx context.Context) ([]domain.Order, error) {
	keys, err := r.store.Keys(ctx, domain.OrderKeyPrefix+"*")
	if err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(keys))
	for _, key := range keys {
		doc, err := r.store.GetDocument(ctx, key)
		if errors.Is(err, domain.ErrKeyAbsent) {
			continue
		}
		if err != nil {
			return nil, err
		}
		o, err := codec.DecodeOrder(doc)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *OrderRepo) Save(ctx context.Context, o domain.Order) error {
	return r.store.PutDocument(ctx, domain.OrderKey(o.ID), codec.EncodeOrder(o))
}

func (r *OrderRepo) DeleteByID(ctx context.Context, id string) error {
	return r.store.Delete(ctx, domain.OrderKey(id))
}

type CustomerRepo struct {
	store port.KVStore
}

func NewCustomerRepo(store port.KVStore) *CustomerRepo {
	return &CustomerRepo{store: store}
}

func (r *CustomerRepo) FindByID(ctx context.Context, id string) (domain.Customer, error) {
	doc, err := r.store.GetDocument(ctx, domain.CustomerKey(id))
	if errors.Is(err, domain.ErrKeyAbsent) {
		return domain.Customer{}, fmt.Errorf("customer %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Customer{}, err
	}
	return codec.DecodeCustomer(doc)
}

func (r *CustomerRepo) FindAll(ctx context.Context) ([]domain.Customer, error) {
	keys, err := r.store.Keys(ctx, domain.CustomerKeyPrefix+"*")
	if err != nil {
		return nil, err
	}
	customers := make([]domain.Customer, 0, len(keys))
	for _, key := range keys {
		doc, err := r.store.GetDocument(ctx, key)
		if errors.Is(err, domain.ErrKeyAbsent) {
			continue
		}
		if err != nil {
			return nil, err
		}
		c, err := codec.DecodeCustomer(doc)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, nil
}

func (r *CustomerRepo) Save(ctx context.Context, c domain.Customer) error {
	return r.store.PutDocument(ctx, domain.CustomerKey(c.ID), codec.EncodeCustomer(c))
}

func (r *CustomerRepo) DeleteByID(ctx context.Context, id string) error {
	return r.store.Delete(ctx, domain.CustomerKey(id))
}
