package upstream

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "complaintdesk_upstream_request_duration_seconds",
			Help:    "Latency of calls to the persistence API and the analyzer",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "op"},
	)

	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaintdesk_upstream_requests_total",
			Help: "Upstream calls by outcome (status code, or \"error\" for network failures)",
		},
		[]string{"service", "op", "code"},
	)
)

func init() {
	prometheus.MustRegister(requestDuration, requestsTotal)
}

func observe(service, op string, status int, started time.Time) {
	requestDuration.WithLabelValues(service, op).Observe(time.Since(started).Seconds())
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	requestsTotal.WithLabelValues(service, op, code).Inc()
}
