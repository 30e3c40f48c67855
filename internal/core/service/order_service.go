package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fsk/redis-orders/internal/core/codec"
	"github.com/fsk/redis-orders/internal/core/domain"
	"github.com/fsk/redis-orders/internal/observ"
	"github.com/fsk/redis-orders/internal/port"
)

var ErrNoProducts = errors.New("order needs at least one product")

// OrderService creates orders with a multi-key atomic write and serves
// order reads through the repository. Created orders are handed to the
// archive queue after the store commit; archiving never participates in
// the atomic unit.
type OrderService struct {
	store        port.KVStore
	orders       port.OrderRepository
	archiveQueue chan domain.Order
	log          *slog.Logger

	now   func() time.Time
	newID func() string
}

func NewOrderService(store port.KVStore, orders port.OrderRepository, queueSize int, log *slog.Logger) *OrderService {
	s := &OrderService{
		store:  store,
		orders: orders,
		log:    log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	if queueSize > 0 {
		s.archiveQueue = make(chan domain.Order, queueSize)
	}
	return s
}

// CreateOrder decrements stock for every distinct requested product,
// writes the order document and appends the order id to the customer,
// all inside one atomic unit watching every key it read. Any failure or
// concurrent modification aborts the whole operation with nothing
// written.
func (s *OrderService) CreateOrder(ctx context.Context, customerID string, productIDs []string) (domain.Order, error) {
	ids := dedupe(productIDs)
	if len(ids) == 0 {
		return domain.Order{}, ErrNoProducts
	}

	customerKey := domain.CustomerKey(customerID)
	watchKeys := make([]string, 0, len(ids)+1)
	watchKeys = append(watchKeys, customerKey)
	for _, id := range ids {
		watchKeys = append(watchKeys, domain.ProductKey(id))
	}

	orderID := s.newID()
	var order domain.Order

	err := s.store.Atomic(ctx, watchKeys, func(u port.AtomicUnit) error {
		custDoc, err := u.GetDocument(ctx, customerKey)
		if errors.Is(err, domain.ErrKeyAbsent) {
			return fmt.Errorf("customer %s: %w", customerID, domain.ErrNotFound)
		}
		if err != nil {
			return err
		}
		customer, err := codec.DecodeCustomer(custDoc)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, id := range ids {
			doc, err := u.GetDocument(ctx, domain.ProductKey(id))
			if errors.Is(err, domain.ErrKeyAbsent) {
				return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
			}
			if err != nil {
				return err
			}
			product, err := codec.DecodeProduct(doc)
			if err != nil {
				return err
			}
			if product.Stock <= 0 {
				return fmt.Errorf("product %s: %w", id, domain.ErrOutOfStock)
			}

			product.Stock--
			product.OrderIDs = append(product.OrderIDs, orderID)
			total = total.Add(product.Price)
			u.StagePutDocument(domain.ProductKey(id), codec.EncodeProduct(product))
		}

		order = domain.Order{
			ID:          orderID,
			OrderDate:   s.now().UTC(),
			TotalAmount: total,
			CustomerID:  customerID,
			ProductIDs:  ids,
		}
		u.StagePutDocument(domain.OrderKey(orderID), codec.EncodeOrder(order))

		customer.OrderIDs = append(customer.OrderIDs, orderID)
		u.StagePutDocument(customerKey, codec.EncodeCustomer(customer))
		return nil
	})

	if errors.Is(err, domain.ErrTxConflict) {
		// another writer touched a watched key; nothing was committed
		return domain.Order{}, fmt.Errorf("create order: %w: %w", domain.ErrTxAborted, domain.ErrTxConflict)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	observ.OrdersCreated.Inc()
	s.log.Info("order created", "order_id", order.ID, "customer_id", customerID,
		"products", len(ids), "total", order.TotalAmount.String())

	if s.archiveQueue != nil {
		select {
		case s.archiveQueue <- order:
		default:
			s.log.Warn("archive queue full, order not archived", "order_id", order.ID)
		}
	}
	return order, nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, id string) (domain.Order, error) {
	return s.orders.FindByID(ctx, id)
}

func (s *OrderService) GetAllOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orders.FindAll(ctx)
}

// ArchiveQueue feeds the archive workers. Nil when archiving is disabled.
func (s *OrderService) ArchiveQueue() <-chan domain.Order {
	return s.archiveQueue
}

func (s *OrderService) Close() {
	if s.archiveQueue != nil {
		close(s.archiveQueue)
	}
}

// dedupe keeps first occurrence order. A duplicate product id in a
// request counts once; buying N of one item is not expressible here.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
