package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "method", "code"})
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"handler", "method"})
)

// HTTP tracks request metrics for the trigger endpoint.
type HTTP struct{}

// NewHTTP constructs an HTTP collector.
func NewHTTP() *HTTP {
	return &HTTP{}
}

// ObserveRequest records one served request.
func (m HTTP) ObserveRequest(handler, method string, code int, started time.Time) {
	httpRequestsTotal.WithLabelValues(handler, method, strconv.Itoa(code)).Inc()
	httpRequestDuration.WithLabelValues(handler, method).Observe(time.Since(started).Seconds())
}
