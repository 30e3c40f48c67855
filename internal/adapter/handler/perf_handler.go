package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsk/redis-orders/internal/core/service"
	"github.com/fsk/redis-orders/internal/logging"
)

// PerfDefaults carries the operator-tunable harness settings from config.
type PerfDefaults struct {
	CounterKey   string
	ComputeDelay time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

type PerfHandler struct {
	harness  *service.StressHarness
	defaults PerfDefaults
}

func NewPerfHandler(harness *service.StressHarness, defaults PerfDefaults) *PerfHandler {
	return &PerfHandler{harness: harness, defaults: defaults}
}

// RunTest drives the stress harness: requestCount total decrement
// attempts spread over concurrentUsers workers against one shared
// counter seeded with requestCount, so a clean run ends at zero.
func (h *PerfHandler) RunTest(c *gin.Context) {
	requestCount := queryInt(c, "requestCount", 1000)
	concurrentUsers := queryInt(c, "concurrentUsers", 10)
	if requestCount <= 0 || concurrentUsers <= 0 || concurrentUsers > requestCount {
		c.JSON(http.StatusBadRequest, gin.H{"error": "requestCount and concurrentUsers must be positive, concurrentUsers <= requestCount"})
		return
	}
	if requestCount%concurrentUsers != 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "requestCount must be divisible by concurrentUsers"})
		return
	}
	retry, _ := strconv.ParseBool(c.DefaultQuery("retry", "false"))

	attempts := requestCount / concurrentUsers
	cfg := service.StressConfig{
		CounterKey:        h.defaults.CounterKey,
		InitialValue:      int64(concurrentUsers * attempts),
		Workers:           concurrentUsers,
		AttemptsPerWorker: attempts,
		ComputeDelay:      h.defaults.ComputeDelay,
		RetryOnConflict:   retry,
		MaxRetries:        h.defaults.MaxRetries,
		RetryBackoff:      h.defaults.RetryBackoff,
	}

	report, err := h.harness.Run(c.Request.Context(), cfg)
	if err != nil {
		logging.From(c).Error("stress run failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}
