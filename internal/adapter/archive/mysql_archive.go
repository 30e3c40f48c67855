// Package archive copies committed orders into MySQL for reporting.
// It runs strictly after the store commit; a failed archive write never
// unwinds an order.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fsk/redis-orders/internal/core/domain"
	"github.com/fsk/redis-orders/internal/observ"
)

type MySQLArchive struct {
	db *sql.DB
}

func NewMySQLArchive(db *sql.DB) *MySQLArchive {
	return &MySQLArchive{db: db}
}

func (a *MySQLArchive) ArchiveOrder(ctx context.Context, o domain.Order) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO archived_orders (id, customer_id, product_ids, total_amount, order_date)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = id`,
		o.ID, o.CustomerID, strings.Join(o.ProductIDs, ","),
		o.TotalAmount.String(), o.OrderDate,
	)
	if err != nil {
		return fmt.Errorf("insert archived order: %w", err)
	}
	observ.OrdersArchived.Inc()
	return nil
}

// Schema returns the DDL for the archive table; applied by operators,
// not by the service.
func Schema() string {
	return `CREATE TABLE IF NOT EXISTS archived_orders (
	id           VARCHAR(64)  PRIMARY KEY,
	customer_id  VARCHAR(64)  NOT NULL,
	product_ids  TEXT         NOT NULL,
	total_amount DECIMAL(12,2) NOT NULL,
	order_date   DATETIME(6)  NOT NULL
)`
}
