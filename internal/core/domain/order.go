package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is immutable once written; the total is fixed at creation time.
type Order struct {
	ID          string
	OrderDate   time.Time
	TotalAmount decimal.Decimal
	CustomerID  string
	ProductIDs  []string
}
