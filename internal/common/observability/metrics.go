// Package observability exposes OpenTelemetry job instruments through the
// Prometheus exporter, next to the promauto collectors in package metrics.
package observability

import (
	"context"
	"time"

	"solar-roi-workers/internal/common/logger"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	jobCounter    otelmetric.Int64Counter
	jobDuration   otelmetric.Float64Histogram
	analyses      otelmetric.Int64Counter
}

// New registers the exporter with the default Prometheus registerer.
func New(serviceName string, log logger.Logger) *Observability {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer, log)
}

// NewWithRegisterer returns a no-op Observability when the exporter cannot be
// registered; every Record method tolerates that.
func NewWithRegisterer(serviceName string, reg prometheus.Registerer, log logger.Logger) *Observability {
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		log.Warn("failed to create prometheus exporter", map[string]interface{}{"error": err.Error()})
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	jobCounter, _ := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)

	jobDuration, _ := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)

	analyses, _ := meter.Int64Counter(
		"analyses.computed",
		otelmetric.WithDescription("Investment analyses computed, by breakeven definedness"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		jobCounter:    jobCounter,
		jobDuration:   jobDuration,
		analyses:      analyses,
	}
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o == nil || o.jobCounter == nil {
		return
	}
	o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o == nil || o.jobDuration == nil {
		return
	}
	o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordAnalysis(ctx context.Context, breakevenDefined bool) {
	if o == nil || o.analyses == nil {
		return
	}
	o.analyses.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.Bool("breakeven_defined", breakevenDefined),
	))
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
