package telemetry

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusTelemetry records metrics into its own Prometheus registry.
type PrometheusTelemetry struct {
	registry *prometheus.Registry

	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	queryRows     *prometheus.HistogramVec
	errors        *prometheus.CounterVec
	renders       *prometheus.CounterVec
	renderLatency *prometheus.HistogramVec
}

// NewPrometheusTelemetry creates a Prometheus adapter.
func NewPrometheusTelemetry(config *Config) *PrometheusTelemetry {
	ns := "datatables"
	if config != nil && config.Namespace != "" {
		ns = config.Namespace
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PrometheusTelemetry{
		registry: reg,
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "queries_total",
			Help:      "Total number of executed statements",
		}, []string{"operation", "status"}),
		queryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "query_duration_seconds",
			Help:      "Statement latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		queryRows: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "query_rows",
			Help:      "Rows returned per fetch statement",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"operation"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "errors_total",
			Help:      "Total number of failed statements",
		}, []string{"operation"}),
		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "renders_total",
			Help:      "Total number of table renders",
		}, []string{"table", "debug", "status"}),
		renderLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "render_duration_seconds",
			Help:      "Table render latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"table"}),
	}
}

// RecordQuery records a statement execution.
func (p *PrometheusTelemetry) RecordQuery(ctx context.Context, info QueryInfo) {
	p.queries.WithLabelValues(info.Operation, status(info.Success)).Inc()
	p.queryDuration.WithLabelValues(info.Operation).Observe(info.Duration.Seconds())
	if info.Operation == "fetch" && info.Success {
		p.queryRows.WithLabelValues(info.Operation).Observe(float64(info.Rows))
	}
}

// RecordError records an error.
func (p *PrometheusTelemetry) RecordError(ctx context.Context, info ErrorInfo) {
	p.errors.WithLabelValues(info.Operation).Inc()
}

// RecordRender records a table render.
func (p *PrometheusTelemetry) RecordRender(ctx context.Context, info RenderInfo) {
	p.renders.WithLabelValues(info.Table, strconv.FormatBool(info.Debug), status(info.Success)).Inc()
	if !info.Debug {
		p.renderLatency.WithLabelValues(info.Table).Observe(info.Duration.Seconds())
	}
}

// Registry returns the registry metrics are recorded into.
func (p *PrometheusTelemetry) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusTelemetry) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Close does nothing; the registry is garbage collected with the adapter.
func (p *PrometheusTelemetry) Close(ctx context.Context) error {
	return nil
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

// Ensure PrometheusTelemetry implements Telemetry interface.
var _ Telemetry = (*PrometheusTelemetry)(nil)
