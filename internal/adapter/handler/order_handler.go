package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fsk/redis-orders/internal/core/domain"
	"github.com/fsk/redis-orders/internal/core/service"
	"github.com/fsk/redis-orders/internal/logging"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type createOrderReq struct {
	CustomerID string   `json:"customerId" binding:"required"`
	ProductIDs []string `json:"productIds" binding:"required,min=1"`
}

type orderResp struct {
	ID          string          `json:"id"`
	OrderDate   time.Time       `json:"orderDate"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CustomerID  string          `json:"customerId"`
	ProductIDs  []string        `json:"productIds"`
}

func toOrderResp(o domain.Order) orderResp {
	return orderResp{
		ID:          o.ID,
		OrderDate:   o.OrderDate,
		TotalAmount: o.TotalAmount,
		CustomerID:  o.CustomerID,
		ProductIDs:  o.ProductIDs,
	}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), req.CustomerID, req.ProductIDs)
	if err != nil {
		logging.From(c).Warn("create order failed", "err", err)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrOutOfStock):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrTxAborted):
			c.JSON(http.StatusConflict, gin.H{"error": "order aborted by concurrent update, retry"})
		case errors.Is(err, service.ErrNoProducts):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusCreated, toOrderResp(order))
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	order, err := h.orders.GetOrderByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.GetAllOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	out := make([]orderResp, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResp(o))
	}
	c.JSON(http.StatusOK, out)
}
