package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsk/redis-orders/internal/adapter/repo"
	"github.com/fsk/redis-orders/internal/adapter/storage"
	"github.com/fsk/redis-orders/internal/core/domain"
	"github.com/fsk/redis-orders/internal/core/service"
)

func newTestRouter(t *testing.T) (*gin.Engine, *storage.MemStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	orderService := service.NewOrderService(store, repo.NewOrderRepo(store), 0, logger)
	productService := service.NewProductService(repo.NewProductRepo(store))
	customerService := service.NewCustomerService(repo.NewCustomerRepo(store))
	harness := service.NewStressHarness(store, logger)

	router := NewRouter(logger,
		NewOrderHandler(orderService),
		NewProductHandler(productService),
		NewCustomerHandler(customerService),
		NewPerfHandler(harness, PerfDefaults{CounterKey: "test:perf"}),
	)
	return router, store
}

func seedEntities(t *testing.T, store *storage.MemStore) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.NewCustomerRepo(store).Save(ctx, domain.Customer{ID: "c-1", Name: "Ada"}))
	require.NoError(t, repo.NewProductRepo(store).Save(ctx, domain.Product{
		ID: "p-1", Name: "keyboard", Price: decimal.RequireFromString("10.50"), Stock: 2,
	}))
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateOrderHTTP(t *testing.T) {
	router, store := newTestRouter(t)
	seedEntities(t, store)

	w := doJSON(router, http.MethodPost, "/api/orders", gin.H{
		"customerId": "c-1",
		"productIds": []string{"p-1"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		ID          string `json:"id"`
		TotalAmount string `json:"totalAmount"`
		CustomerID  string `json:"customerId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "10.5", resp.TotalAmount)
	assert.Equal(t, "c-1", resp.CustomerID)

	w = doJSON(router, http.MethodGet, "/api/orders/"+resp.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateOrderHTTPErrors(t *testing.T) {
	router, store := newTestRouter(t)
	seedEntities(t, store)

	w := doJSON(router, http.MethodPost, "/api/orders", gin.H{"customerId": "c-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing productIds")

	w = doJSON(router, http.MethodPost, "/api/orders", gin.H{
		"customerId": "ghost", "productIds": []string{"p-1"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code, "unknown customer")

	w = doJSON(router, http.MethodPost, "/api/orders", gin.H{
		"customerId": "c-1", "productIds": []string{"ghost"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code, "unknown product")

	// drain the stock, then one more
	for i := 0; i < 2; i++ {
		w = doJSON(router, http.MethodPost, "/api/orders", gin.H{
			"customerId": "c-1", "productIds": []string{"p-1"},
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w = doJSON(router, http.MethodPost, "/api/orders", gin.H{
		"customerId": "c-1", "productIds": []string{"p-1"},
	})
	assert.Equal(t, http.StatusConflict, w.Code, "out of stock")
}

func TestProductAndCustomerCRUDHTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/products", gin.H{
		"name": "keyboard", "price": "49.90", "stock": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))

	w = doJSON(router, http.MethodPost, "/api/products", gin.H{
		"name": "bad", "price": "not-a-number", "stock": 5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/api/products/"+product.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPatch, "/api/products/"+product.ID+"/stock", gin.H{"stock": 42})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated struct {
		Stock int64  `json:"stock"`
		Price string `json:"price"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.EqualValues(t, 42, updated.Stock)
	assert.Equal(t, "49.9", updated.Price, "stock update must not touch other fields")

	w = doJSON(router, http.MethodPatch, "/api/products/ghost/stock", gin.H{"stock": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodPatch, "/api/products/"+product.ID+"/stock", gin.H{"stock": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/products/"+product.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, http.MethodGet, "/api/products/"+product.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodPost, "/api/customers", gin.H{
		"name": "Ada", "email": "ada@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(router, http.MethodGet, "/api/customers", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPerformanceTestHTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/performance/test?requestCount=4&concurrentUsers=2&retry=true", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report service.StressReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, report.ExpectedFinal, report.ActualFinal)
	assert.EqualValues(t, 4, report.Committed)

	w = doJSON(router, http.MethodPost, "/api/performance/test?requestCount=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/performance/test?requestCount=5&concurrentUsers=2", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "uneven split must be rejected")
}
