package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsk/redis-orders/internal/observ"
	"github.com/fsk/redis-orders/internal/port"
)

const defaultCounterKey = "perf:counter"

// StressConfig drives one harness run. ComputeDelay widens the window
// between read and commit so races become reproducible; zero means the
// compute step returns immediately.
type StressConfig struct {
	CounterKey        string
	InitialValue      int64
	Workers           int
	AttemptsPerWorker int
	ComputeDelay      time.Duration
	RetryOnConflict   bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

type StressReport struct {
	InitialValue      int64   `json:"initialValue"`
	Workers           int     `json:"workers"`
	AttemptsPerWorker int     `json:"attemptsPerWorker"`
	ExpectedFinal     int64   `json:"expectedFinal"`
	ActualFinal       int64   `json:"actualFinal"`
	LostUpdates       int64   `json:"lostUpdates"`
	Committed         int64   `json:"committed"`
	Conflicts         int64   `json:"conflicts"`
	Errors            int64   `json:"errors"`
	DurationMs        int64   `json:"durationMs"`
	RequestsPerSecond float64 `json:"requestsPerSecond"`
}

// StressHarness measures lost-update behavior of the optimistic executor
// under concurrent decrements of one shared counter. It characterizes
// the race; it does not try to eliminate it.
type StressHarness struct {
	store port.KVStore
	log   *slog.Logger
}

func NewStressHarness(store port.KVStore, log *slog.Logger) *StressHarness {
	return &StressHarness{store: store, log: log}
}

func (h *StressHarness) Run(ctx context.Context, cfg StressConfig) (StressReport, error) {
	if cfg.CounterKey == "" {
		cfg.CounterKey = defaultCounterKey
	}
	if cfg.Workers <= 0 || cfg.AttemptsPerWorker <= 0 {
		return StressReport{}, fmt.Errorf("workers and attempts per worker must be positive")
	}
	if cfg.RetryOnConflict && cfg.MaxRetries <= 0 {
		cfg.MaxRetries = cfg.Workers * cfg.AttemptsPerWorker
	}

	if err := h.store.Set(ctx, cfg.CounterKey, strconv.FormatInt(cfg.InitialValue, 10)); err != nil {
		return StressReport{}, fmt.Errorf("seed counter: %w", err)
	}

	var opts []ExecutorOption
	if cfg.RetryOnConflict {
		opts = append(opts, WithRetry(cfg.MaxRetries, cfg.RetryBackoff))
	}
	exec := NewOptimisticExecutor(h.store, opts...)

	decrement := func(current int64) (int64, error) {
		if cfg.ComputeDelay > 0 {
			time.Sleep(cfg.ComputeDelay)
		}
		return current - 1, nil
	}

	var committed, conflicts, errCount atomic.Int64
	var wg sync.WaitGroup
	start := time.Now()

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < cfg.AttemptsPerWorker; i++ {
				if ctx.Err() != nil {
					return
				}
				switch res := exec.Run(ctx, cfg.CounterKey, decrement); res.Outcome {
				case TxCommitted:
					committed.Add(1)
				case TxConflict:
					conflicts.Add(1)
				default:
					errCount.Add(1)
					h.log.Warn("stress attempt errored", "err", res.Err)
				}
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)
	observ.StressRunDuration.Observe(float64(elapsed.Milliseconds()))

	raw, err := h.store.Get(ctx, cfg.CounterKey)
	if err != nil {
		return StressReport{}, fmt.Errorf("read final counter: %w", err)
	}
	actual, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return StressReport{}, fmt.Errorf("final counter %q: not numeric", raw)
	}

	total := int64(cfg.Workers) * int64(cfg.AttemptsPerWorker)
	report := StressReport{
		InitialValue:      cfg.InitialValue,
		Workers:           cfg.Workers,
		AttemptsPerWorker: cfg.AttemptsPerWorker,
		ExpectedFinal:     cfg.InitialValue - total,
		ActualFinal:       actual,
		Committed:         committed.Load(),
		Conflicts:         conflicts.Load(),
		Errors:            errCount.Load(),
		DurationMs:        elapsed.Milliseconds(),
	}
	report.LostUpdates = report.ActualFinal - report.ExpectedFinal
	if secs := elapsed.Seconds(); secs > 0 {
		report.RequestsPerSecond = float64(total) / secs
	}

	h.log.Info("stress run finished",
		"expected_final", report.ExpectedFinal,
		"actual_final", report.ActualFinal,
		"conflicts", report.Conflicts,
		"duration_ms", report.DurationMs)
	return report, ctx.Err()
}
