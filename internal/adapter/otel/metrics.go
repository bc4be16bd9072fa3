package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "glamsite"

// Metrics holds the content store's metric instruments.
type Metrics struct {
	ContentReads  metric.Int64Counter
	ContentWrites metric.Int64Counter
	BlobLatency   metric.Float64Histogram
}

// NewMetrics creates all metric instruments from the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.ContentReads, err = meter.Int64Counter("glamsite.content.reads",
		metric.WithDescription("Section reads by outcome (stored, absent, fault, malformed)"))
	if err != nil {
		return nil, err
	}

	m.ContentWrites, err = meter.Int64Counter("glamsite.content.writes",
		metric.WithDescription("Section writes by outcome"))
	if err != nil {
		return nil, err
	}

	m.BlobLatency, err = meter.Float64Histogram("glamsite.blob.duration_seconds",
		metric.WithDescription("Blob store round-trip duration in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordRead counts one section read. Safe on a nil receiver.
func (m *Metrics) RecordRead(ctx context.Context, section, outcome string) {
	if m == nil {
		return
	}
	m.ContentReads.Add(ctx, 1, metric.WithAttributes(
		attribute.String("section", section),
		attribute.String("outcome", outcome),
	))
}

// RecordWrite counts one section write attempt. Safe on a nil receiver.
func (m *Metrics) RecordWrite(ctx context.Context, section, outcome string) {
	if m == nil {
		return
	}
	m.ContentWrites.Add(ctx, 1, metric.WithAttributes(
		attribute.String("section", section),
		attribute.String("outcome", outcome),
	))
}

// RecordBlob observes one blob round trip. Safe on a nil receiver.
func (m *Metrics) RecordBlob(ctx context.Context, op string, seconds float64) {
	if m == nil {
		return
	}
	m.BlobLatency.Record(ctx, seconds, metric.WithAttributes(attribute.String("op", op)))
}
