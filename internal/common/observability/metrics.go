package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records intake batch metrics through an OpenTelemetry meter
// exported to the default Prometheus registry. A nil *Observability is a
// valid no-op.
type Observability struct {
	meterProvider *metric.MeterProvider
	batchCounter  otelmetric.Int64Counter
	entryCounter  otelmetric.Int64Counter
	batchDuration otelmetric.Float64Histogram
}

func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	batchCounter, err := meter.Int64Counter(
		"intake.batches",
		otelmetric.WithDescription("Number of provider notification batches processed"),
	)
	if err != nil {
		return nil, err
	}

	entryCounter, err := meter.Int64Counter(
		"intake.entries",
		otelmetric.WithDescription("Number of notification changes seen per batch"),
	)
	if err != nil {
		return nil, err
	}

	batchDuration, err := meter.Float64Histogram(
		"intake.batch.duration",
		otelmetric.WithDescription("Notification batch processing duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Observability{
		meterProvider: provider,
		batchCounter:  batchCounter,
		entryCounter:  entryCounter,
		batchDuration: batchDuration,
	}, nil
}

// RecordBatch counts one processed batch and how many changes it carried.
func (o *Observability) RecordBatch(ctx context.Context, provider string, entries int, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("provider", provider))
	if o.batchCounter != nil {
		o.batchCounter.Add(ctx, 1, attrs)
	}
	if o.entryCounter != nil {
		o.entryCounter.Add(ctx, int64(entries), attrs)
	}
	if o.batchDuration != nil {
		o.batchDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	return o.meterProvider.Shutdown(ctx)
}
