package archive

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fsk/redis-orders/internal/core/domain"
)

func getArchiveDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/redisorders?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if _, err := db.Exec(Schema()); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func TestArchiveOrder(t *testing.T) {
	db := getArchiveDB(t)
	defer db.Close()

	ctx := context.Background()
	arch := NewMySQLArchive(db)

	order := domain.Order{
		ID:          uuid.NewString(),
		OrderDate:   time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		TotalAmount: decimal.RequireFromString("59.85"),
		CustomerID:  "c-1",
		ProductIDs:  []string{"p-1", "p-2"},
	}
	t.Cleanup(func() { db.Exec("DELETE FROM archived_orders WHERE id = ?", order.ID) })

	if err := arch.ArchiveOrder(ctx, order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var customerID, productIDs, total string
	err := db.QueryRow(
		"SELECT customer_id, product_ids, total_amount FROM archived_orders WHERE id = ?",
		order.ID,
	).Scan(&customerID, &productIDs, &total)
	if err != nil {
		t.Fatalf("query archived order: %v", err)
	}
	if customerID != "c-1" {
		t.Errorf("expected customer c-1, got %s", customerID)
	}
	if productIDs != "p-1,p-2" {
		t.Errorf("expected p-1,p-2, got %s", productIDs)
	}

	// re-archiving the same order must not fail
	if err := arch.ArchiveOrder(ctx, order); err != nil {
		t.Fatalf("duplicate archive must be idempotent: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM archived_orders WHERE id = ?", order.ID).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}
}
