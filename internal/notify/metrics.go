package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Delivery metrics, registered on the default Prometheus registry and
// exposed by the gateway's /metrics endpoint.
var (
	deliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notigate_deliveries_total",
		Help: "Delivery attempts by notifier and outcome.",
	}, []string{"notifier", "outcome"})

	deliveryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notigate_delivery_duration_seconds",
		Help:    "Wall-clock duration of delivery attempts.",
		Buckets: prometheus.DefBuckets,
	}, []string{"notifier"})
)
