package domain

const (
	ProductKeyPrefix  = "product:"
	OrderKeyPrefix    = "order:"
	CustomerKeyPrefix = "customer:"
)

func ProductKey(id string) string  { return ProductKeyPrefix + id }
func OrderKey(id string) string    { return OrderKeyPrefix + id }
func CustomerKey(id string) string { return CustomerKeyPrefix + id }
