package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the engine.
type Metrics struct {
	Registry         *prometheus.Registry
	PagesTotal       *prometheus.CounterVec
	FetchDuration    prometheus.Histogram
	RetriesTotal     prometheus.Counter
	ErrorsTotal      *prometheus.CounterVec
	ProductsTotal    *prometheus.CounterVec
	EscalationsTotal prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_pages_fetched_total",
			Help: "Total pages fetched, by strategy.",
		},
		[]string{"strategy"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_fetch_duration_seconds",
			Help:    "Page fetch latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_fetch_retries_total",
			Help: "Total retry attempts scheduled.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_errors_total",
			Help: "Total errors by type.",
		},
		[]string{"error_type"},
	)
	products := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_products_total",
			Help: "Total reconciled products by outcome.",
		},
		[]string{"outcome"},
	)
	escalations := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_strategy_escalations_total",
			Help: "Categories switched from direct to rendered fetching.",
		},
	)

	registry.MustRegister(pages, fetchDuration, retries, errorsTotal, products, escalations)

	return &Metrics{
		Registry:         registry,
		PagesTotal:       pages,
		FetchDuration:    fetchDuration,
		RetriesTotal:     retries,
		ErrorsTotal:      errorsTotal,
		ProductsTotal:    products,
		EscalationsTotal: escalations,
	}
}

// IncPage increments the fetched-pages counter for a strategy.
func (m *Metrics) IncPage(strategy string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(strategy).Inc()
}

// ObserveFetch records a page fetch duration.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// IncProduct increments the reconciled-products counter for an outcome.
func (m *Metrics) IncProduct(outcome string) {
	if m == nil {
		return
	}
	m.ProductsTotal.WithLabelValues(outcome).Inc()
}

// IncEscalation increments the strategy escalation counter.
func (m *Metrics) IncEscalation() {
	if m == nil {
		return
	}
	m.EscalationsTotal.Inc()
}
