package api

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Victor-F-M-A-R/batismo-pix/internal/catalog"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/donation"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/testutil"
)

// testOIDCServer serves discovery and a JWKS holding key.
func testOIDCServer(t *testing.T, key *rsa.PrivateKey) *httptest.Server {
	t.Helper()
	jwk := jose.JSONWebKey{Key: &key.PublicKey, KeyID: "test-kid", Algorithm: "RS256", Use: "sig"}
	jwks := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{jwk}}

	mux := http.NewServeMux()
	var issuerURL string

	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{
			"issuer":   issuerURL,
			"jwks_uri": issuerURL + "/jwks",
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	mux.HandleFunc("/jwks", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(jwks); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	ts := httptest.NewServer(mux)
	issuerURL = ts.URL
	return ts
}

// signJWT creates a signed JWT with the given claims.
func signJWT(t *testing.T, key *rsa.PrivateKey, claims map[string]any) string {
	t.Helper()
	sig, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.RS256, Key: key},
		(&jose.SignerOptions{}).WithHeader("kid", "test-kid"),
	)
	require.NoError(t, err)

	raw, err := jwt.Signed(sig).Claims(claims).Serialize()
	require.NoError(t, err)
	return raw
}

// issuerFixture is a signing key plus a discovery server trusting it.
type issuerFixture struct {
	key *rsa.PrivateKey
	url string
}

func newIssuer(t *testing.T) issuerFixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	ts := testOIDCServer(t, key)
	t.Cleanup(ts.Close)
	return issuerFixture{key: key, url: ts.URL}
}

// token signs claims for this issuer, valid for an hour unless overridden.
func (f issuerFixture) token(t *testing.T, audience string, extra map[string]any) string {
	t.Helper()
	now := time.Now()
	claims := map[string]any{
		"iss": f.url, "aud": audience,
		"exp": now.Add(time.Hour).Unix(), "iat": now.Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	return signJWT(t, f.key, claims)
}

// whoAmI writes the identity oidcAuth stored in the context.
func whoAmI() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"user": UserFromContext(r.Context())})
	})
}

func TestOIDCAuth(t *testing.T) {
	iss := newIssuer(t)
	provider, err := oidc.NewProvider(oidc.InsecureIssuerURLContext(t.Context(), iss.url), iss.url)
	require.NoError(t, err)
	handler := oidcAuth(provider, "pix-api", slog.New(slog.NewTextHandler(io.Discard, nil)))(whoAmI())

	past := time.Now().Add(-2 * time.Hour)
	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantUser   string
	}{
		{name: "subject", authHeader: "Bearer " + iss.token(t, "pix-api", map[string]any{"sub": "tesouraria"}),
			wantStatus: http.StatusOK, wantUser: "tesouraria"},
		{name: "email fallback", authHeader: "Bearer " + iss.token(t, "pix-api", map[string]any{"email": "tesouraria@fraternidade.example"}),
			wantStatus: http.StatusOK, wantUser: "tesouraria@fraternidade.example"},
		{name: "lowercase scheme", authHeader: "bearer " + iss.token(t, "pix-api", map[string]any{"sub": "tesouraria"}),
			wantStatus: http.StatusOK, wantUser: "tesouraria"},
		{name: "no identity", authHeader: "Bearer " + iss.token(t, "pix-api", nil),
			wantStatus: http.StatusUnauthorized},
		{name: "expired", authHeader: "Bearer " + iss.token(t, "pix-api", map[string]any{
			"sub": "tesouraria", "iat": past.Unix(), "exp": past.Add(time.Hour).Unix()}),
			wantStatus: http.StatusUnauthorized},
		{name: "wrong audience", authHeader: "Bearer " + iss.token(t, "other-api", map[string]any{"sub": "tesouraria"}),
			wantStatus: http.StatusUnauthorized},
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "basic auth", authHeader: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized},
		{name: "empty bearer", authHeader: "Bearer   ", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", authHeader: "Bearer not.a.jwt", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/pix/payloads", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")
				assert.NotContains(t, w.Body.String(), "oidc:", "verifier errors stay in the logs")
				return
			}
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantUser, body["user"])
		})
	}
}

func TestServer_OIDCGuardsOnlyEncode(t *testing.T) {
	iss := newIssuer(t)
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := donation.New(donation.Options{
		Payee:    testutil.SitePayee(),
		Tiers:    catalog.Default(),
		Renderer: &testutil.StubRenderer{},
		Logger:   quiet,
	})
	require.NoError(t, err)
	srv, err := New(t.Context(), svc, Options{
		OIDC:   OIDCConfig{IssuerURL: iss.url, Audience: "pix-api", Enabled: true},
		Logger: quiet,
	})
	require.NoError(t, err)

	serve := func(method, path, body, token string) int {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, serve("GET", "/api/v1/tiers", "", ""))
	assert.Equal(t, http.StatusOK, serve("GET", "/api/v1/tiers/jaco/checkout", "", ""))
	assert.Equal(t, http.StatusBadRequest, serve("POST", "/api/v1/pix/verify", `{"payload":"x"}`, ""))

	encodeBody := `{"key":"+5511965040342","amount":10}`
	assert.Equal(t, http.StatusUnauthorized, serve("POST", "/api/v1/pix/payloads", encodeBody, ""))
	token := iss.token(t, "pix-api", map[string]any{"sub": "tesouraria"})
	assert.Equal(t, http.StatusOK, serve("POST", "/api/v1/pix/payloads", encodeBody, token))
}

func TestNew_OIDCDiscoveryFailure(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()

	_, err := New(t.Context(), nil, Options{OIDC: OIDCConfig{IssuerURL: dead.URL, Audience: "pix-api", Enabled: true}})
	assert.ErrorContains(t, err, "oidc discovery")
}

func TestNew_OIDCRequiresAudience(t *testing.T) {
	iss := newIssuer(t)
	_, err := New(t.Context(), nil, Options{OIDC: OIDCConfig{IssuerURL: iss.url, Enabled: true}})
	assert.ErrorContains(t, err, "audience is required")
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "203.0.113.9:52100"
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(req))

	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", clientIP(req))

	req.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", clientIP(req))
}
