package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fsk/redis-orders/internal/core/domain"
	"github.com/fsk/redis-orders/internal/observ"
	"github.com/fsk/redis-orders/internal/port"
)

type TxOutcome int

const (
	TxCommitted TxOutcome = iota
	TxConflict
	TxErrored
)

func (o TxOutcome) String() string {
	switch o {
	case TxCommitted:
		return "committed"
	case TxConflict:
		return "conflict"
	default:
		return "errored"
	}
}

// TxResult reports a single optimistic update. Value is only meaningful
// when Outcome is TxCommitted; Err only when TxErrored.
type TxResult struct {
	Outcome TxOutcome
	Value   int64
	Err     error
}

// ComputeFunc derives the value to commit from the observed one. It may
// take non-trivial wall-clock time; that window is where concurrent
// writers collide.
type ComputeFunc func(current int64) (int64, error)

// OptimisticExecutor performs the watch-read-compute-commit cycle on a
// single scalar counter key. It does not retry on conflict unless
// WithRetry is set: a lost race is a result, not something to mask.
type OptimisticExecutor struct {
	store      port.KVStore
	maxRetries int
	backoff    time.Duration
}

type ExecutorOption func(*OptimisticExecutor)

// WithRetry re-runs the full cycle up to maxRetries times after a
// conflict, sleeping backoff between attempts.
func WithRetry(maxRetries int, backoff time.Duration) ExecutorOption {
	return func(e *OptimisticExecutor) {
		e.maxRetries = maxRetries
		e.backoff = backoff
	}
}

func NewOptimisticExecutor(store port.KVStore, opts ...ExecutorOption) *OptimisticExecutor {
	e := &OptimisticExecutor{store: store}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *OptimisticExecutor) Run(ctx context.Context, key string, compute ComputeFunc) TxResult {
	res := e.attempt(ctx, key, compute)
	for i := 0; i < e.maxRetries && res.Outcome == TxConflict; i++ {
		if e.backoff > 0 {
			select {
			case <-ctx.Done():
				return TxResult{Outcome: TxErrored, Err: ctx.Err()}
			case <-time.After(e.backoff):
			}
		}
		res = e.attempt(ctx, key, compute)
	}
	return res
}

func (e *OptimisticExecutor) attempt(ctx context.Context, key string, compute ComputeFunc) TxResult {
	var next int64
	err := e.store.Atomic(ctx, []string{key}, func(u port.AtomicUnit) error {
		raw, err := u.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("read %s: %w", key, err)
		}
		current, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("key %s holds non-numeric value %q", key, raw)
		}
		if next, err = compute(current); err != nil {
			return fmt.Errorf("compute: %w", err)
		}
		u.StageSet(key, strconv.FormatInt(next, 10))
		return nil
	})

	switch {
	case err == nil:
		observ.TxCommits.Inc()
		return TxResult{Outcome: TxCommitted, Value: next}
	case errors.Is(err, domain.ErrTxConflict):
		observ.TxConflicts.Inc()
		return TxResult{Outcome: TxConflict}
	default:
		return TxResult{Outcome: TxErrored, Err: err}
	}
}
