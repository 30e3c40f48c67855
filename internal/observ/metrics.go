// Package observ holds the service-level Prometheus collectors.
package observ

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TxCommits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_tx_commits_total",
		Help: "Optimistic transactions committed",
	})

	TxConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_tx_conflicts_total",
		Help: "Optimistic transactions aborted because a watched key changed",
	})

	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders committed to the store",
	})

	OrdersArchived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_archived_total",
		Help: "Orders written to the relational archive",
	})

	StressRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stress_run_duration_ms",
		Help:    "Wall-clock duration of stress harness runs in ms",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	})
)
