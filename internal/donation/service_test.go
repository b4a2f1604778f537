package donation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/Victor-F-M-A-R/batismo-pix/internal/catalog"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/domain"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/observability"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/pix"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/qr"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/testutil"
)

const jacoPayload = "00020101021126570014BR.GOV.BCB.PIX0114+55119650403420217A SEMENTE DE JACO52040000530398654047.775802BR5916FRATERNIDADE LUZ6009SAO PAULO62110507JACO77763042D4A"

func newService(t *testing.T, payee domain.Payee, tiers TierSource, r QRRenderer) *Service {
	t.Helper()
	m, err := observability.NewMetricsFrom(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	svc, err := New(Options{
		Payee:    payee,
		Tiers:    tiers,
		Renderer: r,
		Metrics:  m,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return svc
}

func TestCheckout_Ready(t *testing.T) {
	t.Parallel()
	r := &testutil.StubRenderer{}
	svc := newService(t, testutil.SitePayee(), catalog.Default(), r)

	c, err := svc.Checkout(context.Background(), "jaco")
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutReady, c.State)
	assert.True(t, c.Ready())
	assert.Equal(t, jacoPayload, c.Payload)
	assert.Equal(t, jacoPayload, c.CopyText)
	assert.True(t, strings.HasPrefix(c.QRDataURL, "data:image/png;base64,"))
	assert.Contains(t, c.QRDataURL, jacoPayload)
	assert.Empty(t, c.Error)
	assert.Equal(t, "jaco", c.Tier.ID)
	assert.Equal(t, 1, r.Calls())
}

func TestCheckout_AllDefaultTiersEncode(t *testing.T) {
	t.Parallel()
	svc := newService(t, testutil.SitePayee(), catalog.Default(), &testutil.StubRenderer{})
	for _, tier := range svc.Tiers(context.Background()) {
		c, err := svc.Checkout(context.Background(), tier.ID)
		require.NoError(t, err, tier.ID)
		require.Equal(t, domain.CheckoutReady, c.State, tier.ID)
		assert.NoError(t, pix.Verify(c.Payload), tier.ID)
	}
}

func TestCheckout_UnknownTier(t *testing.T) {
	t.Parallel()
	svc := newService(t, testutil.SitePayee(), catalog.Default(), &testutil.StubRenderer{})
	_, err := svc.Checkout(context.Background(), "dizimo")
	assert.ErrorIs(t, err, ErrTierNotFound)
}

func TestCheckout_RenderFailureKeepsPayload(t *testing.T) {
	t.Parallel()
	svc := newService(t, testutil.SitePayee(), catalog.Default(), &testutil.StubRenderer{Err: errors.New("canvas unavailable")})

	c, err := svc.Checkout(context.Background(), "jaco")
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutPayloadOnly, c.State)
	assert.Equal(t, jacoPayload, c.CopyText)
	assert.Empty(t, c.QRDataURL)
	assert.Contains(t, c.Error, "canvas unavailable")
}

func TestCheckout_EncodeFailureFallsBackToKey(t *testing.T) {
	t.Parallel()
	// A random key plus a long title overflows the merchant account template.
	payee := domain.Payee{Key: "123e4567-e89b-12d3-a456-426614174000", Name: "Fraternidade Luz", City: "Sao Paulo"}
	tiers, err := catalog.New([]domain.Tier{{
		ID:     "longa",
		Title:  strings.Repeat("OFERTA ", 9),
		Amount: decimal.RequireFromString("10.00"),
		TxID:   "LONGA",
	}})
	require.NoError(t, err)
	r := &testutil.StubRenderer{}
	svc := newService(t, payee, tiers, r)

	c, err := svc.Checkout(context.Background(), "longa")
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutUnavailable, c.State)
	assert.Empty(t, c.Payload)
	assert.Equal(t, payee.Key, c.CopyText)
	assert.Contains(t, c.Error, "exceeds max length")
	assert.Zero(t, r.Calls(), "nothing to render without a payload")

	_, err = svc.Payload(context.Background(), "longa")
	assert.ErrorIs(t, err, pix.ErrFieldTooLong)
}

func TestEncode(t *testing.T) {
	t.Parallel()
	svc := newService(t, testutil.SitePayee(), catalog.Default(), &testutil.StubRenderer{})

	payload, err := svc.Encode(context.Background(), pix.PaymentRequest{
		Key:         "+5511965040342",
		Amount:      7.77,
		TxID:        "JACO777",
		Description: "A Semente de Jacó",
	})
	require.NoError(t, err)
	assert.Equal(t, jacoPayload, payload, "name and city come from the payee")

	_, err = svc.Encode(context.Background(), pix.PaymentRequest{Key: "x", Amount: 0})
	assert.ErrorIs(t, err, pix.ErrInvalidAmount)

	_, err = svc.Encode(context.Background(), pix.PaymentRequest{Amount: 1})
	assert.ErrorIs(t, err, pix.ErrMissingKey)
}

func TestQRCode(t *testing.T) {
	t.Parallel()
	svc := newService(t, testutil.SitePayee(), catalog.Default(), &testutil.StubRenderer{})

	png, err := svc.QRCode(context.Background(), "jaco", qr.RenderOptions{})
	require.NoError(t, err)
	assert.Equal(t, "PNG["+jacoPayload+"|M|640]", string(png))

	opts := qr.DefaultRenderOptions()
	opts.Level = qr.LevelHigh
	opts.Width = 256
	png, err = svc.QRCode(context.Background(), "jaco", opts)
	require.NoError(t, err)
	assert.Equal(t, "PNG["+jacoPayload+"|H|256]", string(png))

	_, err = svc.QRCode(context.Background(), "nope", qr.RenderOptions{})
	assert.ErrorIs(t, err, ErrTierNotFound)
}

func TestQRCode_RealRenderer(t *testing.T) {
	t.Parallel()
	svc := newService(t, testutil.SitePayee(), catalog.Default(), qr.NewRenderer())
	png, err := svc.QRCode(context.Background(), "318", qr.RenderOptions{})
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}

func TestVerify(t *testing.T) {
	t.Parallel()
	svc := newService(t, testutil.SitePayee(), catalog.Default(), &testutil.StubRenderer{})

	d, err := svc.Verify(context.Background(), jacoPayload)
	require.NoError(t, err)
	assert.Equal(t, "7.77", d.Amount)
	assert.Equal(t, "JACO777", d.TxID)

	_, err = svc.Verify(context.Background(), strings.Replace(jacoPayload, "JACO777", "JACO778", 1))
	assert.ErrorIs(t, err, pix.ErrChecksumMismatch)

	_, err = svc.Verify(context.Background(), "not a payload")
	assert.ErrorIs(t, err, pix.ErrMalformed)
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()
	_, err := New(Options{})
	assert.Error(t, err)

	bad := qr.DefaultRenderOptions()
	bad.Width = 1
	_, err = New(Options{Tiers: catalog.Default(), QR: bad})
	assert.Error(t, err)

	svc, err := New(Options{Tiers: catalog.Default()})
	require.NoError(t, err)
	assert.Equal(t, qr.DefaultRenderOptions(), svc.QROptions())
}

func TestReason(t *testing.T) {
	t.Parallel()
	_, amountErr := pix.FormatAmount(-1)
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{pix.ErrMissingKey, "missing_key"},
		{amountErr, "invalid_amount"},
		{&pix.FieldTooLongError{ID: "26", Length: 120}, "field_too_long"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Reason(tt.err))
	}
}
