// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Victor-F-M-A-R/batismo-pix/internal/domain"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/qr"
)

// Config holds all application configuration.
type Config struct {
	Payee     domain.Payee
	TiersFile string

	// API server settings.
	APIPort        string
	CORSOrigins    []string
	LogLevel       string
	OTelEnabled    bool
	OIDCIssuer     string
	OIDCAudience   string
	RateLimitRPS   float64
	RateLimitBurst int

	QR qr.RenderOptions

	// Asset publishing.
	AWSRegion      string
	AWSProfile     string
	PublishBucket  string
	PublishPrefix  string
	PublishRoleARN string
}

// LoadFromEnv reads configuration from environment variables with sensible defaults.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		Payee: domain.Payee{
			Key:  strings.TrimSpace(os.Getenv("PIX_KEY")),
			Name: os.Getenv("PIX_MERCHANT_NAME"),
			City: os.Getenv("PIX_MERCHANT_CITY"),
		},
		TiersFile:      os.Getenv("PIX_TIERS_FILE"),
		APIPort:        envOr("PIX_API_PORT", "8080"),
		CORSOrigins:    parseCORSOrigins(os.Getenv("PIX_CORS_ORIGINS")),
		LogLevel:       envOr("PIX_LOG_LEVEL", "info"),
		OIDCIssuer:     os.Getenv("PIX_OIDC_ISSUER"),
		OIDCAudience:   os.Getenv("PIX_OIDC_AUDIENCE"),
		QR:             qr.DefaultRenderOptions(),
		AWSRegion:      envOr("AWS_REGION", "sa-east-1"),
		AWSProfile:     os.Getenv("AWS_PROFILE"),
		PublishBucket:  os.Getenv("PIX_PUBLISH_BUCKET"),
		PublishPrefix:  strings.Trim(os.Getenv("PIX_PUBLISH_PREFIX"), "/"),
		PublishRoleARN: os.Getenv("PIX_PUBLISH_ROLE_ARN"),
	}

	if err := domain.ValidatePayee(cfg.Payee); err != nil {
		return Config{}, fmt.Errorf("config: PIX_KEY: %w", err)
	}

	var err error
	if cfg.OTelEnabled, err = envBool("PIX_OTEL_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRPS, err = envFloat("PIX_RATE_LIMIT_RPS", 5); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRPS < 0 {
		return Config{}, fmt.Errorf("config: PIX_RATE_LIMIT_RPS must not be negative, got %g", cfg.RateLimitRPS)
	}
	if cfg.RateLimitBurst, err = envInt("PIX_RATE_LIMIT_BURST", 10); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst < 1 {
		return Config{}, fmt.Errorf("config: PIX_RATE_LIMIT_BURST must be at least 1 when rate limiting is on")
	}

	if cfg.QR.Width, err = envInt("PIX_QR_WIDTH", cfg.QR.Width); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("PIX_QR_LEVEL"); v != "" {
		if cfg.QR.Level, err = qr.ParseLevel(v); err != nil {
			return Config{}, fmt.Errorf("config: PIX_QR_LEVEL: %w", err)
		}
	}
	if err := cfg.QR.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if cfg.OIDCAudience != "" && cfg.OIDCIssuer == "" {
		return Config{}, fmt.Errorf("config: PIX_OIDC_AUDIENCE set without PIX_OIDC_ISSUER")
	}
	if cfg.OIDCIssuer != "" && cfg.OIDCAudience == "" {
		return Config{}, fmt.Errorf("config: PIX_OIDC_ISSUER set without PIX_OIDC_AUDIENCE")
	}

	return cfg, nil
}

// OIDCEnabled reports whether bearer-token auth should guard the encode endpoint.
func (c Config) OIDCEnabled() bool {
	return c.OIDCIssuer != ""
}

// PublishToS3 reports whether exported assets go to S3 instead of a local directory.
func (c Config) PublishToS3() bool {
	return c.PublishBucket != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: invalid %s %q", key, v)
	}
	return b, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q", key, v)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q", key, v)
	}
	return f, nil
}

func parseCORSOrigins(raw string) []string {
	if raw == "" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(o); t != "" {
			origins = append(origins, t)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
