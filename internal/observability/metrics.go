package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds OTel metric instruments for payload encoding and rendering.
type Metrics struct {
	PayloadsBuilt   metric.Int64Counter
	EncodeFailures  metric.Int64Counter
	QRRenderLatency metric.Float64Histogram
	Verifications   metric.Int64Counter
}

// NewMetrics creates the metric instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return NewMetricsFrom(otel.Meter("batismo-pix"))
}

// NewMetricsFrom creates the metric instruments on meter.
func NewMetricsFrom(meter metric.Meter) (*Metrics, error) {
	payloadsBuilt, err := meter.Int64Counter("pix.payload.built",
		metric.WithDescription("Number of BR-Code payloads encoded"),
	)
	if err != nil {
		return nil, err
	}

	encodeFailures, err := meter.Int64Counter("pix.payload.failures",
		metric.WithDescription("Number of payload encodings rejected by validation"),
	)
	if err != nil {
		return nil, err
	}

	qrRenderLatency, err := meter.Float64Histogram("pix.qr.render_seconds",
		metric.WithDescription("Time spent rendering a QR image"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	verifications, err := meter.Int64Counter("pix.payload.verifications",
		metric.WithDescription("Number of payloads checked, by outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		PayloadsBuilt:   payloadsBuilt,
		EncodeFailures:  encodeFailures,
		QRRenderLatency: qrRenderLatency,
		Verifications:   verifications,
	}, nil
}

// RecordPayloadBuilt records a successful encoding. tier is empty for ad-hoc requests.
func (m *Metrics) RecordPayloadBuilt(ctx context.Context, tier string) {
	m.PayloadsBuilt.Add(ctx, 1,
		metric.WithAttributes(attribute.String("tier", tierLabel(tier))),
	)
}

// RecordEncodeFailure records a rejected encoding with its error class.
func (m *Metrics) RecordEncodeFailure(ctx context.Context, tier, reason string) {
	m.EncodeFailures.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("tier", tierLabel(tier)),
			attribute.String("reason", reason),
		),
	)
}

// RecordQRRender records how long a QR render took.
func (m *Metrics) RecordQRRender(ctx context.Context, d time.Duration) {
	m.QRRenderLatency.Record(ctx, d.Seconds())
}

// RecordVerification records a verification outcome ("valid", "malformed", "checksum_mismatch").
func (m *Metrics) RecordVerification(ctx context.Context, outcome string) {
	m.Verifications.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
}

func tierLabel(tier string) string {
	if tier == "" {
		return "adhoc"
	}
	return tier
}
