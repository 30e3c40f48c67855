package codec

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsk/redis-orders/internal/core/domain"
)

func TestProductRoundTrip(t *testing.T) {
	p := domain.Product{
		ID:       "p-1",
		Name:     "keyboard",
		Price:    decimal.RequireFromString("49.90"),
		Stock:    12,
		OrderIDs: []string{"o-1", "o-2"},
	}

	doc := EncodeProduct(p)
	assert.Equal(t, TypeProduct, doc[domain.TypeTagField])
	assert.Equal(t, "12", doc["stock"])
	assert.Equal(t, "o-1,o-2", doc["orders"])

	got, err := DecodeProduct(doc)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Name, got.Name)
	assert.True(t, p.Price.Equal(got.Price), "price %s != %s", p.Price, got.Price)
	assert.Equal(t, p.Stock, got.Stock)
	assert.Equal(t, p.OrderIDs, got.OrderIDs)
}

func TestOrderRoundTrip(t *testing.T) {
	o := domain.Order{
		ID:          "o-1",
		OrderDate:   time.Date(2024, 5, 17, 9, 30, 0, 123456789, time.UTC),
		TotalAmount: decimal.RequireFromString("120.45"),
		CustomerID:  "c-1",
		ProductIDs:  []string{"p-1", "p-2", "p-3"},
	}

	doc := EncodeOrder(o)
	got, err := DecodeOrder(doc)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.True(t, o.OrderDate.Equal(got.OrderDate))
	assert.True(t, o.TotalAmount.Equal(got.TotalAmount))
	assert.Equal(t, o.CustomerID, got.CustomerID)
	assert.Equal(t, o.ProductIDs, got.ProductIDs)
}

func TestCustomerRoundTrip(t *testing.T) {
	c := domain.Customer{
		ID:       "c-1",
		Name:     "Ada",
		Email:    "ada@example.com",
		Phone:    "+44123",
		OrderIDs: []string{"o-9"},
	}

	doc := EncodeCustomer(c)
	got, err := DecodeCustomer(doc)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestCustomerOmitsEmptyOptionalFields(t *testing.T) {
	doc := EncodeCustomer(domain.Customer{ID: "c-1", Name: "Ada"})
	_, hasEmail := doc["email"]
	_, hasPhone := doc["phone"]
	_, hasOrders := doc["orders"]
	assert.False(t, hasEmail)
	assert.False(t, hasPhone)
	assert.False(t, hasOrders)

	got, err := DecodeCustomer(doc)
	require.NoError(t, err)
	assert.Empty(t, got.Email)
	assert.Nil(t, got.OrderIDs)
}

func TestDecodeIsIdempotent(t *testing.T) {
	doc := EncodeProduct(domain.Product{
		ID:    "p-1",
		Name:  "mouse",
		Price: decimal.RequireFromString("9.99"),
		Stock: 3,
	})

	first, err := DecodeProduct(doc)
	require.NoError(t, err)
	second, err := DecodeProduct(doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDecodeDispatchesOnTypeTag(t *testing.T) {
	doc := EncodeOrder(domain.Order{
		ID:          "o-1",
		OrderDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount: decimal.NewFromInt(5),
		CustomerID:  "c-1",
	})

	rec, err := Decode(doc)
	require.NoError(t, err)
	_, ok := rec.(domain.Order)
	assert.True(t, ok, "expected domain.Order, got %T", rec)
}

func TestDecodeErrors(t *testing.T) {
	base := func() domain.Document {
		return EncodeProduct(domain.Product{
			ID: "p-1", Name: "mouse",
			Price: decimal.NewFromInt(1), Stock: 1,
		})
	}

	missingTag := base()
	delete(missingTag, domain.TypeTagField)
	_, err := Decode(missingTag)
	assert.ErrorIs(t, err, ErrDecode)

	unknownTag := base()
	unknownTag[domain.TypeTagField] = "invoice"
	_, err = Decode(unknownTag)
	assert.ErrorIs(t, err, ErrDecode)

	badStock := base()
	badStock["stock"] = "plenty"
	_, err = DecodeProduct(badStock)
	assert.ErrorIs(t, err, ErrDecode)

	badPrice := base()
	badPrice["price"] = "cheap"
	_, err = DecodeProduct(badPrice)
	assert.ErrorIs(t, err, ErrDecode)

	missingName := base()
	delete(missingName, "name")
	_, err = DecodeProduct(missingName)
	assert.ErrorIs(t, err, ErrDecode)

	wrongType := EncodeCustomer(domain.Customer{ID: "c-1", Name: "Ada"})
	_, err = DecodeProduct(wrongType)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestEncodeRejectsUnknownType(t *testing.T) {
	_, err := Encode(struct{ X int }{1})
	assert.ErrorIs(t, err, ErrEncode)
}
