package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus implements Recorder on a dedicated prometheus registry.
type Prometheus struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	objectsTotal     *prometheus.CounterVec
	validationFailed *prometheus.CounterVec
	schemaCache      *prometheus.CounterVec
	schemaDuration   prometheus.Histogram
}

// NewPrometheus registers the roster collectors on a fresh registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roster_http_requests_total",
				Help: "Total HTTP requests labelled by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roster_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		objectsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roster_objects_written_total",
				Help: "Objects written labelled by resource and operation",
			},
			[]string{"resource", "operation"},
		),
		validationFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roster_validation_failures_total",
				Help: "Rejected payloads labelled by resource",
			},
			[]string{"resource"},
		),
		schemaCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roster_schema_cache_lookups_total",
				Help: "Schema cache lookups labelled by result",
			},
			[]string{"result"},
		),
		schemaDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "roster_schema_generation_seconds",
				Help:    "Time spent generating the OpenAPI document",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	p.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.requestsTotal,
		p.requestDuration,
		p.objectsTotal,
		p.validationFailed,
		p.schemaCache,
		p.schemaDuration,
	)

	return p
}

// Registry exposes the underlying registry for tests.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *Prometheus) ObserveRequest(method, route string, status int, duration time.Duration) {
	p.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (p *Prometheus) IncObjectCreated(resource string) {
	p.objectsTotal.WithLabelValues(resource, "create").Inc()
}

func (p *Prometheus) IncObjectUpdated(resource string) {
	p.objectsTotal.WithLabelValues(resource, "update").Inc()
}

func (p *Prometheus) IncObjectDeleted(resource string) {
	p.objectsTotal.WithLabelValues(resource, "delete").Inc()
}

func (p *Prometheus) IncValidationFailed(resource string) {
	p.validationFailed.WithLabelValues(resource).Inc()
}

func (p *Prometheus) IncSchemaCacheHit() {
	p.schemaCache.WithLabelValues("hit").Inc()
}

func (p *Prometheus) IncSchemaCacheMiss() {
	p.schemaCache.WithLabelValues("miss").Inc()
}

func (p *Prometheus) ObserveSchemaGeneration(duration time.Duration) {
	p.schemaDuration.Observe(duration.Seconds())
}
