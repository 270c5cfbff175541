// Package metrics exposes engine and HTTP activity to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"furniture-catalog/internal/domain"
)

const namespace = "furniture"

// Collector implements budget.Recorder and owns its own registry.
type Collector struct {
	registry *prometheus.Registry

	mutations   *prometheus.CounterVec
	recompute   prometheus.Histogram
	totalCost   prometheus.Gauge
	itemCount   prometheus.Gauge
	roomsUsed   prometheus.Gauge
	httpReqs    *prometheus.CounterVec
	httpLatency *prometheus.HistogramVec
}

// New registers the collectors plus the Go and process collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Engine mutations by operation and outcome.",
		}, []string{"op", "outcome"}),
		recompute: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "budget_recompute_seconds",
			Help:      "Time spent loading and aggregating the collection.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		totalCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "budget_total_cost_dollars",
			Help:      "Total cost of the most recent snapshot.",
		}),
		itemCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "budget_item_count",
			Help:      "Effective item count of the most recent snapshot.",
		}),
		roomsUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "budget_rooms_used",
			Help:      "Distinct positive room numbers in the most recent snapshot.",
		}),
		httpReqs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	c.registry.MustRegister(
		c.mutations, c.recompute, c.totalCost, c.itemCount, c.roomsUsed,
		c.httpReqs, c.httpLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) ObserveMutation(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.mutations.WithLabelValues(op, outcome).Inc()
}

func (c *Collector) ObserveSnapshot(snap *domain.BudgetSnapshot, took time.Duration) {
	c.recompute.Observe(took.Seconds())
	if snap == nil {
		return
	}
	cost, _ := snap.TotalCost.Float64()
	c.totalCost.Set(cost)
	c.itemCount.Set(float64(snap.TotalItemCount))
	c.roomsUsed.Set(float64(snap.RoomsUsed))
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Middleware counts requests by their chi route pattern.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.httpReqs.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.httpLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
