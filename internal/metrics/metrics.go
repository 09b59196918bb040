// Package metrics exposes prometheus collectors for the ordering API,
// served on a dedicated metrics port next to the main server.
package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Time taken to serve HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	CartAdds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_adds_total",
			Help: "Number of successful add-to-cart operations",
		},
	)

	OrdersOpened = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_opened_total",
			Help: "Number of open orders created",
		},
	)

	OrdersDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_delivered_total",
			Help: "Number of orders marked delivered",
		},
	)
)

func init() {
	prometheus.MustRegister(RequestDuration, CartAdds, OrdersOpened, OrdersDelivered)
}

// Serve starts the metrics HTTP server. Blocks; run it in a goroutine.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Printf("Starting metrics server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}
