// Package metrics exposes Prometheus counters for the computation engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SplitsComputed counts split calculations by scheme.
	SplitsComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitledger_splits_computed_total",
		Help: "Number of split calculations performed, by scheme.",
	}, []string{"scheme"})

	// ConversionsPerformed counts currency conversions.
	ConversionsPerformed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_currency_conversions_total",
		Help: "Number of currency conversions performed.",
	})

	// BalanceRecomputations counts full ledger folds, by scope kind.
	BalanceRecomputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splitledger_balance_recomputations_total",
		Help: "Number of balance recomputations, by container type.",
	}, []string{"container"})

	// SettlementsReversed counts settlement reversals.
	SettlementsReversed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_settlements_reversed_total",
		Help: "Number of settlements reversed.",
	})
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
