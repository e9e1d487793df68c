// Package metrics registers the prometheus collectors for the ballot
// services and provides the functions to record against them.
package metrics

import (
	"errors"
	"strconv"

	"github.com/ardanlabs/ballot/foundation/blockchain/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ballot"

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Count of handled HTTP requests by status code.",
	}, []string{"code"})
	httpPanicsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "panics_total",
		Help:      "Count of recovered handler panics.",
	})
	ledgerAdmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "admissions_total",
		Help:      "Count of ledger transaction admissions by result.",
	}, []string{"result"})
	ledgerBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "blocks_committed_total",
		Help:      "Count of blocks committed to election ledgers.",
	})
)

// ObserveRequest records a handled request.
func ObserveRequest(statusCode int) {
	httpRequestsTotal.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// AddPanic records a recovered panic.
func AddPanic() {
	httpPanicsTotal.Inc()
}

// ObserveAdmission records the result of adding a transaction to a ledger.
// Rejections are labeled with the rule that was broken.
func ObserveAdmission(err error) {
	result := "accepted"
	if err != nil {
		result = "error"

		var te *ledger.TransactionError
		if errors.As(err, &te) {
			result = string(te.Reason)
		}
	}

	ledgerAdmissionsTotal.WithLabelValues(result).Inc()
}

// AddBlocks records blocks committed to a ledger.
func AddBlocks(n int) {
	if n <= 0 {
		return
	}
	ledgerBlocksTotal.Add(float64(n))
}
