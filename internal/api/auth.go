package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCConfig holds OIDC authentication settings.
type OIDCConfig struct {
	IssuerURL string
	Audience  string
	Enabled   bool
}

type contextKey string

const ctxUserID contextKey = "user_id"

// UserFromContext returns the caller identity set by oidcAuth, or "".
func UserFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxUserID).(string)
	return v
}

type identityClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

func (c identityClaims) user() string {
	if c.Sub != "" {
		return c.Sub
	}
	return c.Email
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// oidcAuth guards a handler with OIDC-verified bearer tokens. The token must
// carry a subject or an email; that identity is stored in the context.
func oidcAuth(provider *oidc.Provider, audience string, logger *slog.Logger) func(http.Handler) http.Handler {
	verifier := provider.Verifier(&oidc.Config{ClientID: audience})

	deny := func(w http.ResponseWriter, r *http.Request, msg string) {
		w.Header().Set("WWW-Authenticate", `Bearer realm="batismo-pix"`)
		logger.Warn("auth rejected", "path", r.URL.Path, "reason", msg, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, http.StatusUnauthorized, msg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				deny(w, r, "bearer token required")
				return
			}

			token, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				logger.Debug("token verification failed", "error", err)
				deny(w, r, "invalid token")
				return
			}

			var claims identityClaims
			if err := token.Claims(&claims); err != nil {
				deny(w, r, "invalid token claims")
				return
			}
			user := claims.user()
			if user == "" {
				deny(w, r, "token has no subject")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserID, user)))
		})
	}
}
