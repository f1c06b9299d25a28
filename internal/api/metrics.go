package api

import "github.com/prometheus/client_golang/prometheus"

// Production computation metrics
var (
	actionsComputed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fournil_actions_computed_total",
			Help: "Production sheet computations by status",
		},
		[]string{"status"},
	)

	actionsComputeSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fournil_actions_compute_seconds",
			Help:    "Time taken to compute a day's production sheets",
			Buckets: prometheus.DefBuckets,
		},
	)

	ordersFolded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fournil_orders_folded_total",
			Help: "Orders folded into production sheets",
		},
	)

	wsClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fournil_ws_clients",
			Help: "Connected production sheet websocket clients",
		},
	)
)

func init() {
	prometheus.MustRegister(actionsComputed, actionsComputeSeconds, ordersFolded, wsClients)
}
