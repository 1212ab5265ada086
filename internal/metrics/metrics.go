package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation counters labelled by outcome (ok, insufficient_balance,
// invalid_input, not_found, error).
var (
	SalesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokengrid_sales_total",
		Help: "Completed sale credit operations by outcome",
	}, []string{"outcome"})

	RedemptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokengrid_redemptions_total",
		Help: "Token redemption operations by outcome",
	}, []string{"outcome"})

	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tokengrid_http_request_duration_seconds",
		Help:    "HTTP request latency by method and path",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)
