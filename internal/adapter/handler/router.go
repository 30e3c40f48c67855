package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fsk/redis-orders/internal/adapter/handler/middleware"
)

func NewRouter(log *slog.Logger, oh *OrderHandler, ph *ProductHandler, ch *CustomerHandler, perf *PerfHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics(), middleware.Logging(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/orders", oh.CreateOrder)
		api.GET("/orders/:id", oh.GetOrderByID)
		api.GET("/orders", oh.ListOrders)

		api.POST("/products", ph.CreateProduct)
		api.GET("/products/:id", ph.GetProductByID)
		api.GET("/products", ph.ListProducts)
		api.PATCH("/products/:id/stock", ph.UpdateProductStock)
		api.DELETE("/products/:id", ph.DeleteProduct)

		api.POST("/customers", ch.CreateCustomer)
		api.GET("/customers/:id", ch.GetCustomerByID)
		api.GET("/customers", ch.ListCustomers)
		api.DELETE("/customers/:id", ch.DeleteCustomer)

		api.POST("/performance/test", perf.RunTest)
	}

	return r
}
