package pairing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pairingsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gateway_pairings_started_total",
		Help: "Pairing codes issued to announcing displays.",
	})

	pairingsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gateway_pairings_completed_total",
		Help: "Codes claimed and bound into active sessions.",
	})

	pairingsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_pairings_failed_total",
		Help: "Claims rejected, by reason.",
	}, []string{"reason"})

	reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gateway_display_reconnects_total",
		Help: "Token-authenticated display reconnects.",
	})

	sessionsClosed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_sessions_closed_total",
		Help: "Sessions closed, by reason.",
	}, []string{"reason"})

	storeRetriesExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gateway_store_retries_exhausted_total",
		Help: "Shared store operations that failed after all retries.",
	})
)
