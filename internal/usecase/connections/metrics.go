package connections

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gateway_connections_active",
			Help: "Live transport connections owned by this process (per role)",
		},
		[]string{"role"},
	)

	heartbeatTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_heartbeat_timeouts_total",
			Help: "Display connections closed by the missed-heartbeat watchdog",
		},
	)
)
