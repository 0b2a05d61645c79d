package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	HTTPRequests     *prometheus.CounterVec
	CheckoutTotal    *prometheus.CounterVec
	CheckoutDuration prometheus.Histogram
}

func New(service string) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shop",
			Subsystem: service,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"path", "status"}),
		CheckoutTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shop",
			Subsystem: service,
			Name:      "checkout_total",
			Help:      "Checkout attempts by outcome.",
		}, []string{"outcome"}),
		CheckoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shop",
			Subsystem: service,
			Name:      "checkout_duration_seconds",
			Help:      "Checkout transaction latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	prometheus.MustRegister(m.HTTPRequests, m.CheckoutTotal, m.CheckoutDuration)
	return m
}

func (m *Metrics) ObserveCheckout(outcome string, d time.Duration) {
	m.CheckoutTotal.WithLabelValues(outcome).Inc()
	m.CheckoutDuration.Observe(d.Seconds())
}

// Middleware counts requests per route pattern and status code.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.HTTPRequests.WithLabelValues(r.URL.Path, strconv.Itoa(sw.status)).Inc()
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
