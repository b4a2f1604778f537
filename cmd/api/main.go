// Command api runs the HTTP API server for the donation checkout.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Victor-F-M-A-R/batismo-pix/internal/api"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/catalog"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/config"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/donation"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/observability"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/ratelimit"
)

var version = "dev"

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTelEnabled {
		shutdown, err := observability.InitTracer(ctx, "batismo-pix-api", version)
		if err != nil {
			logger.Error("otel init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
		shutdownMeter, err := observability.InitMeter(ctx, "batismo-pix-api", version, 30*time.Second)
		if err != nil {
			logger.Error("otel metrics init failed", "error", err)
		} else {
			defer shutdownMeter(context.Background())
		}
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		logger.Error("metrics init failed", "error", err)
		os.Exit(1)
	}

	tiers, err := catalog.Load(cfg.TiersFile)
	if err != nil {
		logger.Error("unable to load tiers", "path", cfg.TiersFile, "error", err)
		os.Exit(1)
	}

	svc, err := donation.New(donation.Options{
		Payee:   cfg.Payee,
		Tiers:   tiers,
		QR:      cfg.QR,
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("unable to create donation service", "error", err)
		os.Exit(1)
	}

	var limiter *ratelimit.ClientLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = ratelimit.NewClientLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, ratelimit.DefaultIdleTTL)
		go limiter.Run(ctx, time.Minute)
	}

	oidcCfg := api.OIDCConfig{
		IssuerURL: cfg.OIDCIssuer,
		Audience:  cfg.OIDCAudience,
		Enabled:   cfg.OIDCEnabled(),
	}
	srv, err := api.New(ctx, svc, api.Options{
		CORSOrigins: cfg.CORSOrigins,
		OIDC:        oidcCfg,
		Limiter:     limiter,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("unable to create API server", "error", err)
		os.Exit(1)
	}

	var handler http.Handler = srv
	if cfg.OTelEnabled {
		handler = otelhttp.NewHandler(handler, "batismo-pix-api")
	}

	httpSrv := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("starting API server",
		"addr", httpSrv.Addr,
		"tiers", tiers.Len(),
		"oidc_enabled", oidcCfg.Enabled,
		"rate_limit_rps", cfg.RateLimitRPS,
	)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
