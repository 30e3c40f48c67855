package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fsk/redis-orders/internal/core/domain"
	"github.com/fsk/redis-orders/internal/core/service"
)

type CustomerHandler struct {
	customers *service.CustomerService
}

func NewCustomerHandler(customers *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

type createCustomerReq struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

type customerResp struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	OrderIDs []string `json:"orderIds,omitempty"`
}

func toCustomerResp(c domain.Customer) customerResp {
	return customerResp{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone, OrderIDs: c.OrderIDs}
}

func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req createCustomerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cust, err := h.customers.Create(c.Request.Context(), req.Name, req.Email, req.Phone)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, toCustomerResp(cust))
}

func (h *CustomerHandler) GetCustomerByID(c *gin.Context) {
	cust, err := h.customers.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, toCustomerResp(cust))
}

func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	customers, err := h.customers.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	out := make([]customerResp, 0, len(customers))
	for _, cust := range customers {
		out = append(out, toCustomerResp(cust))
	}
	c.JSON(http.StatusOK, out)
}

func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	if err := h.customers.DeleteByID(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.Status(http.StatusNoContent)
}
