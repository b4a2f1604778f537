// Package api serves donation checkouts and PIX payload tooling over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/Victor-F-M-A-R/batismo-pix/internal/agui"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/domain"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/pix"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/qr"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/ratelimit"
)

// Service is the donation behaviour the API exposes.
type Service interface {
	Payee() domain.Payee
	QROptions() qr.RenderOptions
	Tiers(ctx context.Context) []domain.Tier
	Tier(ctx context.Context, id string) (domain.Tier, error)
	Checkout(ctx context.Context, tierID string) (domain.Checkout, error)
	QRCode(ctx context.Context, tierID string, opts qr.RenderOptions) ([]byte, error)
	Encode(ctx context.Context, req pix.PaymentRequest) (string, error)
	Verify(ctx context.Context, payload string) (*pix.Decoded, error)
}

// Options configures a Server.
type Options struct {
	CORSOrigins []string
	OIDC        OIDCConfig
	// Limiter throttles every route except health. Nil disables limiting.
	Limiter *ratelimit.ClientLimiter
	Logger  *slog.Logger
}

// Server is the HTTP API server for donation checkouts.
type Server struct {
	svc     Service
	logger  *slog.Logger
	mux     *http.ServeMux
	handler http.Handler
	protect func(http.Handler) http.Handler
}

// New creates a Server. With OIDC enabled it performs provider discovery
// against the issuer, so ctx bounds that request.
func New(ctx context.Context, svc Service, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	s := &Server{
		svc:     svc,
		logger:  opts.Logger,
		mux:     http.NewServeMux(),
		protect: func(h http.Handler) http.Handler { return h },
	}
	if opts.OIDC.Enabled {
		if opts.OIDC.Audience == "" {
			return nil, fmt.Errorf("api: oidc audience is required")
		}
		provider, err := oidc.NewProvider(ctx, opts.OIDC.IssuerURL)
		if err != nil {
			return nil, fmt.Errorf("api: oidc discovery: %w", err)
		}
		s.protect = oidcAuth(provider, opts.OIDC.Audience, s.logger)
	}
	s.routes()

	var h http.Handler = s.mux
	if opts.Limiter != nil {
		h = rateLimit(opts.Limiter, h)
	}
	s.handler = requestID(logging(s.logger, cors(opts.CORSOrigins, h)))
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/tiers", s.handleListTiers)
	s.mux.HandleFunc("GET /api/v1/tiers/{id}/checkout", s.handleCheckout)
	s.mux.HandleFunc("GET /api/v1/tiers/{id}/ui", s.handleCheckoutUI)
	s.mux.HandleFunc("GET /api/v1/tiers/{id}/qr.png", s.handleQRCode)
	s.mux.HandleFunc("GET /api/v1/tiers/{id}/stream", agui.StreamHandler(s.svc, agui.DefaultConfig()))
	s.mux.Handle("POST /api/v1/pix/payloads", s.protect(http.HandlerFunc(s.handleEncode)))
	s.mux.HandleFunc("POST /api/v1/pix/verify", s.handleVerify)
}
