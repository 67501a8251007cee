// Package telemetry holds the Prometheus metrics and OpenTelemetry tracer.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "credence"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Analysis metrics
	AnalysesTotal     *prometheus.CounterVec
	AnalysisDuration  *prometheus.HistogramVec
	ScoreDistribution prometheus.Histogram

	// Dependency metrics
	ExtractionFailures prometheus.Counter
	AIFallbacks        *prometheus.CounterVec
	CacheLookups       *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	RateLimited  prometheus.Counter

	// Batch metrics
	BatchItems *prometheus.CounterVec
}

// Provider wraps telemetry providers
type Provider struct {
	Tracer   trace.Tracer
	Metrics  *Metrics
	registry *prometheus.Registry
}

// NewProvider initializes a private registry so tests and servers never collide
func NewProvider() *Provider {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Provider{
		Tracer:   otel.Tracer(serviceName),
		Metrics:  NewMetrics(registry),
		registry: registry,
	}
}

// Handler returns the Prometheus HTTP handler for /metrics
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Tracer returns the package tracer for components built without a Provider
func Tracer() trace.Tracer {
	return otel.Tracer(serviceName)
}

// NewMetrics registers every metric on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	m.AnalysesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "credence_analyses_total",
		Help: "Completed analyses by method and input kind",
	}, []string{"method", "input"})

	m.AnalysisDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "credence_analysis_duration_seconds",
		Help:    "End-to-end analysis latency",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"method"})

	m.ScoreDistribution = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "credence_credibility_score",
		Help:    "Distribution of credibility scores",
		Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})

	m.ExtractionFailures = factory.NewCounter(prometheus.CounterOpts{
		Name: "credence_extraction_failures_total",
		Help: "URLs that could not be fetched or extracted",
	})

	m.AIFallbacks = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "credence_ai_fallbacks_total",
		Help: "AI analyses that fell back to the rule path",
	}, []string{"provider"})

	m.CacheLookups = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "credence_cache_lookups_total",
		Help: "Result cache lookups by outcome",
	}, []string{"result"})

	m.HTTPRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "credence_http_requests_total",
		Help: "HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	m.HTTPDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "credence_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	m.RateLimited = factory.NewCounter(prometheus.CounterOpts{
		Name: "credence_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})

	m.BatchItems = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "credence_batch_items_total",
		Help: "Batch items by outcome",
	}, []string{"status"})

	return m
}
