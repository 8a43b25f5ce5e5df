package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	restrictionsApplied prometheus.Counter
	restrictionsSkipped prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jointgraph",
			Name:      "http_requests_total",
			Help:      "total http requests by path and status code",
		}, []string{"path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jointgraph",
			Name:      "http_request_duration_seconds",
			Help:      "http request latency by path",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		restrictionsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jointgraph",
			Name:      "turn_restrictions_applied_total",
			Help:      "turn restrictions rewritten into the graph",
		}),
		restrictionsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jointgraph",
			Name:      "turn_restrictions_skipped_total",
			Help:      "turn restrictions skipped because of unsupported shape or bad data",
		}),
	}
	reg.MustRegister(m.httpRequestsTotal, m.httpRequestDuration,
		m.restrictionsApplied, m.restrictionsSkipped)
	return m
}

// ObserveRestrictions records one ApplyRestrictions batch.
func (m *Metrics) ObserveRestrictions(applied, skipped int) {
	m.restrictionsApplied.Add(float64(applied))
	m.restrictionsSkipped.Add(float64(skipped))
}

func PromeHttpMiddleware(m *Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			m.httpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(ww.Status())).Inc()
			m.httpRequestDuration.WithLabelValues(r.URL.Path).Observe(time.Since(start).Seconds())
		})
	}
}
