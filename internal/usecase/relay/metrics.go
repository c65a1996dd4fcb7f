package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var relayDeliveries = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gateway_relay_deliveries_total",
		Help: "Relay delivery outcomes (local write, remote publish, offline drop)",
	},
	[]string{"result"},
)
