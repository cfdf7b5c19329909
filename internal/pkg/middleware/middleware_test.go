package middleware_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartcart/internal/domain"
	"smartcart/internal/pkg/cache/cachetest"
	"smartcart/internal/pkg/logger"
	"smartcart/internal/pkg/middleware"
	"smartcart/internal/pkg/token"
)

func newLogger() logger.Logger { return logger.NewLoggerWithWriter("error", io.Discard) }

func newTokens(t *testing.T) *token.Service {
	t.Helper()
	svc, err := token.NewService(token.Config{SecretKey: "segredo", Issuer: "SmartCart-API", Audience: "SmartCart-Clients", TTL: time.Hour})
	require.NoError(t, err)
	return svc
}

func issue(t *testing.T, tokens *token.Service, role domain.UserRole) string {
	t.Helper()
	tok, _, err := tokens.GenerateToken(domain.User{ID: 11, Email: "ana@example.com", Role: role})
	require.NoError(t, err)
	return tok
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) domain.ErrorResponse {
	t.Helper()
	var body domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func echoClaims(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"userId": claims.UserID, "role": claims.Role})
}

func TestAuthMiddleware_AttachesClaims(t *testing.T) {
	tokens := newTokens(t)
	handler := middleware.NewAuthMiddleware(tokens, newLogger())(echoClaims)

	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, tokens, domain.RoleCustomer))
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, float64(11), got["userId"])
	assert.Equal(t, "Customer", got["role"])
}

func TestAuthMiddleware_RejectsMissingOrBadToken(t *testing.T) {
	tokens := newTokens(t)
	handler := middleware.NewAuthMiddleware(tokens, newLogger())(echoClaims)

	cases := map[string]string{
		"ausente":     "",
		"sem esquema": issue(t, tokens, domain.RoleCustomer),
		"basic":       "Basic dXNlcjpwYXNz",
		"adulterado":  "Bearer " + issue(t, tokens, domain.RoleCustomer) + "x",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, "UNAUTHORIZED", body.Category)
			assert.Equal(t, body.Message, body.Error)
		})
	}
}

func TestPermissionMiddleware(t *testing.T) {
	tokens := newTokens(t)
	log := newLogger()
	auth := middleware.NewAuthMiddleware(tokens, log)
	adminOnly := middleware.PermissionMiddleware(log, domain.RoleAdmin)
	handler := auth(adminOnly(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	call := func(role domain.UserRole) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/products", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, tokens, role))
		rec := httptest.NewRecorder()
		handler(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, call(domain.RoleAdmin).Code)

	rec := call(domain.RoleCustomer)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decodeError(t, rec).Category)
}

func TestPermissionMiddleware_WithoutAuthIsUnauthorized(t *testing.T) {
	handler := middleware.PermissionMiddleware(newLogger(), domain.RoleAdmin)(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodDelete, "/v1/products/1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimiter_BlocksOverLimitPerIP(t *testing.T) {
	fake := cachetest.New()
	limited := middleware.RateLimiter(fake, 2, time.Minute, newLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/products", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec
	}

	first := call("10.0.0.1:5000")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:5001").Code)

	blocked := call("10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "60", blocked.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", decodeError(t, blocked).Category)

	assert.Equal(t, http.StatusOK, call("10.0.0.2:5000").Code, "outro IP tem contador próprio")
}

func TestRateLimiter_WindowExpires(t *testing.T) {
	fake := cachetest.New()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	fake.Now = func() time.Time { return now }
	limited := middleware.RateLimiter(fake, 1, time.Minute, newLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	call := func() int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call())
	assert.Equal(t, http.StatusTooManyRequests, call())
	now = now.Add(61 * time.Second)
	assert.Equal(t, http.StatusOK, call())
}

func TestRateLimiter_FailsOpenWhenCacheIsDown(t *testing.T) {
	fake := cachetest.New()
	fake.Err = errors.New("redis fora")
	limited := middleware.RateLimiter(fake, 1, time.Minute, newLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestRequestLogger_PropagatesRequestID(t *testing.T) {
	handler := middleware.RequestLogger(newLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/cart/items", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "req-1", rec.Header().Get(middleware.RequestIDHeader))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, rec.Header().Get(middleware.RequestIDHeader), 36)
}
