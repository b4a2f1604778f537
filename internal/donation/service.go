// Package donation turns the tier catalog and payee into ready-to-scan
// checkouts: payload, copy text and QR image.
package donation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Victor-F-M-A-R/batismo-pix/internal/domain"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/observability"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/pix"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/qr"
)

// ErrTierNotFound is returned for tier ids the catalog does not hold.
var ErrTierNotFound = errors.New("donation: tier not found")

// TierSource is the read side of a tier catalog.
type TierSource interface {
	Get(id string) (domain.Tier, bool)
	List() []domain.Tier
}

// QRRenderer draws payloads as images.
type QRRenderer interface {
	PNG(payload string, opts qr.RenderOptions) ([]byte, error)
	DataURL(payload string, opts qr.RenderOptions) (string, error)
}

// Options configures a Service. Tiers is required; the rest default.
type Options struct {
	Payee    domain.Payee
	Tiers    TierSource
	Renderer QRRenderer
	QR       qr.RenderOptions
	Metrics  *observability.Metrics
	Logger   *slog.Logger
	Tracer   trace.Tracer
}

// Service builds checkouts for the configured payee.
type Service struct {
	payee    domain.Payee
	tiers    TierSource
	renderer QRRenderer
	qrOpts   qr.RenderOptions
	metrics  *observability.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
}

// New creates a Service.
func New(opts Options) (*Service, error) {
	if opts.Tiers == nil {
		return nil, fmt.Errorf("donation: tier source is required")
	}
	if opts.Renderer == nil {
		opts.Renderer = qr.NewRenderer()
	}
	if opts.QR == (qr.RenderOptions{}) {
		opts.QR = qr.DefaultRenderOptions()
	}
	if err := opts.QR.Validate(); err != nil {
		return nil, fmt.Errorf("donation: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = observability.Tracer()
	}
	return &Service{
		payee:    opts.Payee,
		tiers:    opts.Tiers,
		renderer: opts.Renderer,
		qrOpts:   opts.QR,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		tracer:   opts.Tracer,
	}, nil
}

// Payee returns the configured payee.
func (s *Service) Payee() domain.Payee { return s.payee }

// QROptions returns the default render options.
func (s *Service) QROptions() qr.RenderOptions { return s.qrOpts }

// Tiers lists the catalog in display order.
func (s *Service) Tiers(ctx context.Context) []domain.Tier {
	return s.tiers.List()
}

// Tier looks up a single tier.
func (s *Service) Tier(ctx context.Context, id string) (domain.Tier, error) {
	t, ok := s.tiers.Get(id)
	if !ok {
		return domain.Tier{}, fmt.Errorf("%w: %q", ErrTierNotFound, id)
	}
	return t, nil
}

// Checkout builds the modal contents for a tier. Encoding or rendering
// problems degrade the checkout instead of failing it: without a payload the
// copy text falls back to the raw key, and without an image the payload is
// still offered for copy and paste. Only an unknown tier is an error.
func (s *Service) Checkout(ctx context.Context, tierID string) (domain.Checkout, error) {
	ctx, span := s.tracer.Start(ctx, "donation.Checkout", trace.WithAttributes(attribute.String("tier", tierID)))
	defer span.End()

	tier, err := s.Tier(ctx, tierID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return domain.Checkout{}, err
	}

	c := domain.Checkout{Tier: tier}
	payload, err := s.encode(ctx, tier.ID, tier.PaymentRequest(s.payee))
	if err != nil {
		c.State = domain.CheckoutUnavailable
		c.CopyText = s.payee.Key
		c.Error = err.Error()
		span.RecordError(err)
		return c, nil
	}
	c.Payload = payload
	c.CopyText = payload

	url, err := timedRender(ctx, s.metrics, func() (string, error) { return s.renderer.DataURL(payload, s.qrOpts) })
	if err != nil {
		s.logger.Warn("qr render failed", "tier", tier.ID, "error", err)
		span.RecordError(err)
		c.State = domain.CheckoutPayloadOnly
		c.Error = err.Error()
		return c, nil
	}
	c.QRDataURL = url
	c.State = domain.CheckoutReady
	return c, nil
}

// Payload encodes the payload for a tier.
func (s *Service) Payload(ctx context.Context, tierID string) (string, error) {
	tier, err := s.Tier(ctx, tierID)
	if err != nil {
		return "", err
	}
	return s.encode(ctx, tier.ID, tier.PaymentRequest(s.payee))
}

// Encode builds a payload for an ad-hoc request. Empty name and city fall
// back to the configured payee; an empty key does not.
func (s *Service) Encode(ctx context.Context, req pix.PaymentRequest) (string, error) {
	ctx, span := s.tracer.Start(ctx, "donation.Encode")
	defer span.End()
	if req.Name == "" {
		req.Name = s.payee.Name
	}
	if req.City == "" {
		req.City = s.payee.City
	}
	payload, err := s.encode(ctx, "", req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return payload, err
}

// QRCode renders a tier's payload as PNG. Zero-valued opts use the service defaults.
func (s *Service) QRCode(ctx context.Context, tierID string, opts qr.RenderOptions) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "donation.QRCode", trace.WithAttributes(attribute.String("tier", tierID)))
	defer span.End()
	if opts == (qr.RenderOptions{}) {
		opts = s.qrOpts
	}
	payload, err := s.Payload(ctx, tierID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	png, err := timedRender(ctx, s.metrics, func() ([]byte, error) { return s.renderer.PNG(payload, opts) })
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return png, nil
}

// Verify checks a payload's checksum and decodes its fields.
func (s *Service) Verify(ctx context.Context, payload string) (*pix.Decoded, error) {
	_, span := s.tracer.Start(ctx, "donation.Verify")
	defer span.End()

	d, err := pix.Decode(payload)
	outcome := "valid"
	switch {
	case errors.Is(err, pix.ErrChecksumMismatch):
		outcome = "checksum_mismatch"
	case err != nil:
		outcome = "malformed"
	}
	if s.metrics != nil {
		s.metrics.RecordVerification(ctx, outcome)
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return d, nil
}

func (s *Service) encode(ctx context.Context, tierID string, req pix.PaymentRequest) (string, error) {
	payload, err := pix.BuildPayload(req)
	if err != nil {
		s.logger.Warn("payload encoding rejected", "tier", tierID, "reason", Reason(err), "error", err)
		if s.metrics != nil {
			s.metrics.RecordEncodeFailure(ctx, tierID, Reason(err))
		}
		return "", err
	}
	s.logger.Debug("payload encoded", "tier", tierID, "length", len(payload))
	if s.metrics != nil {
		s.metrics.RecordPayloadBuilt(ctx, tierID)
	}
	return payload, nil
}

func timedRender[T any](ctx context.Context, m *observability.Metrics, fn func() (T, error)) (T, error) {
	start := time.Now()
	out, err := fn()
	if m != nil {
		m.RecordQRRender(ctx, time.Since(start))
	}
	return out, err
}

// Reason classifies an encoding error for logs and metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, pix.ErrMissingKey):
		return "missing_key"
	case errors.Is(err, pix.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, pix.ErrFieldTooLong):
		return "field_too_long"
	default:
		return "other"
	}
}
