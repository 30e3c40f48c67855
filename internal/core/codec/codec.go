// Package codec maps typed domain records to store documents and back.
// Every field is string-encoded; reference sets are comma-joined id lists
// so cross-entity relations stay identifier-based.
package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsk/redis-orders/internal/core/domain"
)

const (
	TypeProduct  = "product"
	TypeOrder    = "order"
	TypeCustomer = "customer"
)

var (
	ErrEncode = errors.New("encode failed")
	ErrDecode = errors.New("decode failed")
)

// Encode converts a domain record into a Document, stamping the type tag.
func Encode(record any) (domain.Document, error) {
	switch r := record.(type) {
	case domain.Product:
		return EncodeProduct(r), nil
	case *domain.Product:
		return EncodeProduct(*r), nil
	case domain.Order:
		return EncodeOrder(r), nil
	case *domain.Order:
		return EncodeOrder(*r), nil
	case domain.Customer:
		return EncodeCustomer(r), nil
	case *domain.Customer:
		return EncodeCustomer(*r), nil
	default:
		return nil, fmt.Errorf("%w: unsupported record type %T", ErrEncode, record)
	}
}

// Decode selects the target shape from the type tag and returns the
// decoded record as domain.Product, domain.Order or domain.Customer.
func Decode(doc domain.Document) (any, error) {
	switch doc[domain.TypeTagField] {
	case TypeProduct:
		return DecodeProduct(doc)
	case TypeOrder:
		return DecodeOrder(doc)
	case TypeCustomer:
		return DecodeCustomer(doc)
	case "":
		return nil, fmt.Errorf("%w: missing %s tag", ErrDecode, domain.TypeTagField)
	default:
		return nil, fmt.Errorf("%w: unknown type tag %q", ErrDecode, doc[domain.TypeTagField])
	}
}

func EncodeProduct(p domain.Product) domain.Document {
	doc := domain.Document{
		domain.TypeTagField: TypeProduct,
		"id":                p.ID,
		"name":              p.Name,
		"price":             p.Price.String(),
		"stock":             strconv.FormatInt(p.Stock, 10),
	}
	putIDs(doc, "orders", p.OrderIDs)
	return doc
}

func DecodeProduct(doc domain.Document) (domain.Product, error) {
	var p domain.Product
	if err := expectTag(doc, TypeProduct); err != nil {
		return p, err
	}
	var err error
	if p.ID, err = required(doc, TypeProduct, "id"); err != nil {
		return p, err
	}
	if p.Name, err = required(doc, TypeProduct, "name"); err != nil {
		return p, err
	}
	if p.Price, err = decimalField(doc, TypeProduct, "price"); err != nil {
		return p, err
	}
	if p.Stock, err = intField(doc, TypeProduct, "stock"); err != nil {
		return p, err
	}
	p.OrderIDs = getIDs(doc, "orders")
	return p, nil
}

func EncodeOrder(o domain.Order) domain.Document {
	doc := domain.Document{
		domain.TypeTagField: TypeOrder,
		"id":                o.ID,
		"orderDate":         o.OrderDate.UTC().Format(time.RFC3339Nano),
		"totalAmount":       o.TotalAmount.String(),
		"customer":          o.CustomerID,
	}
	putIDs(doc, "products", o.ProductIDs)
	return doc
}

func DecodeOrder(doc domain.Document) (domain.Order, error) {
	var o domain.Order
	if err := expectTag(doc, TypeOrder); err != nil {
		return o, err
	}
	var err error
	if o.ID, err = required(doc, TypeOrder, "id"); err != nil {
		return o, err
	}
	raw, err := required(doc, TypeOrder, "orderDate")
	if err != nil {
		return o, err
	}
	if o.OrderDate, err = time.Parse(time.RFC3339Nano, raw); err != nil {
		return o, fmt.Errorf("%w: order field orderDate %q: %v", ErrDecode, raw, err)
	}
	if o.TotalAmount, err = decimalField(doc, TypeOrder, "totalAmount"); err != nil {
		return o, err
	}
	if o.CustomerID, err = required(doc, TypeOrder, "customer"); err != nil {
		return o, err
	}
	o.ProductIDs = getIDs(doc, "products")
	return o, nil
}

func EncodeCustomer(c domain.Customer) domain.Document {
	doc := domain.Document{
		domain.TypeTagField: TypeCustomer,
		"id":                c.ID,
		"name":              c.Name,
	}
	if c.Email != "" {
		doc["email"] = c.Email
	}
	if c.Phone != "" {
		doc["phone"] = c.Phone
	}
	putIDs(doc, "orders", c.OrderIDs)
	return doc
}

func DecodeCustomer(doc domain.Document) (domain.Customer, error) {
	var c domain.Customer
	if err := expectTag(doc, TypeCustomer); err != nil {
		return c, err
	}
	var err error
	if c.ID, err = required(doc, TypeCustomer, "id"); err != nil {
		return c, err
	}
	if c.Name, err = required(doc, TypeCustomer, "name"); err != nil {
		return c, err
	}
	c.Email = doc["email"]
	c.Phone = doc["phone"]
	c.OrderIDs = getIDs(doc, "orders")
	return c, nil
}

func expectTag(doc domain.Document, want string) error {
	got := doc[domain.TypeTagField]
	if got == "" {
		return fmt.Errorf("%w: missing %s tag", ErrDecode, domain.TypeTagField)
	}
	if got != want {
		return fmt.Errorf("%w: expected %s document, got %q", ErrDecode, want, got)
	}
	return nil
}

func required(doc domain.Document, entity, field string) (string, error) {
	v, ok := doc[field]
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s field %s missing", ErrDecode, entity, field)
	}
	return v, nil
}

func intField(doc domain.Document, entity, field string) (int64, error) {
	raw, err := required(doc, entity, field)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s field %s %q: not numeric", ErrDecode, entity, field, raw)
	}
	return n, nil
}

func decimalField(doc domain.Document, entity, field string) (decimal.Decimal, error) {
	raw, err := required(doc, entity, field)
	if err != nil {
		return decimal.Decimal{}, err
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s field %s %q: not a decimal", ErrDecode, entity, field, raw)
	}
	return d, nil
}

func putIDs(doc domain.Document, field string, ids []string) {
	if len(ids) == 0 {
		return
	}
	doc[field] = strings.Join(ids, ",")
}

func getIDs(doc domain.Document, field string) []string {
	raw := doc[field]
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
