package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fruitygit/internal/auth"
	"fruitygit/internal/config"
	"fruitygit/internal/handler"
)

func newServer(t *testing.T, rate string) *echo.Echo {
	t.Helper()
	return newServerWithConfig(t, &config.Config{AuthRateLimit: rate, MaxUploadBytes: 1024})
}

func newServerWithConfig(t *testing.T, cfg *config.Config) *echo.Echo {
	t.Helper()
	e := echo.New()
	err := Register(e, cfg, zerolog.Nop(), auth.NewJWTService("router-secret", "fruitygit", time.Minute), nil, Handlers{
		Auth:   handler.NewAuthHandler(nil),
		User:   handler.NewUserHandler(nil),
		Repo:   handler.NewRepositoryHandler(nil),
		Health: handler.NewHealthHandler(nil),
	})
	require.NoError(t, err)
	return e
}

func TestRegister_Routes(t *testing.T) {
	e := newServer(t, "")

	registered := map[string]bool{}
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /healthz",
		"GET /metrics",
		"POST /api/auth/register",
		"POST /api/auth/login",
		"POST /api/auth/refresh",
		"POST /api/auth/logout",
		"GET /api/auth/validate",
		"GET /api/auth/me",
		"GET /api/auth/search",
		"POST /api/git/repositories",
		"POST /api/git/:repo/init",
		"POST /api/git/:repo/commit",
		"POST /api/git/:repo/history",
		"POST /api/git/:repo/download",
		"POST /api/git/:repo/files",
		"POST /api/git/:repo/delete",
		"GET /api/git/:repo",
		"PATCH /api/git/:repo",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestRegister_ProtectedRoutes(t *testing.T) {
	e := newServer(t, "")

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/git/demo/init"},
		{http.MethodPost, "/api/git/repositories"},
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/auth/logout"},
	} {
		t.Run(tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRegister_Health(t *testing.T) {
	e := newServer(t, "")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestRegister_AuthRateLimit(t *testing.T) {
	e := newServer(t, "2-M")

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func TestRegister_AuthRateLimitPerForwardedClient(t *testing.T) {
	e := newServerWithConfig(t, &config.Config{AuthRateLimit: "3-M", RateLimitIPHeader: "X-Real-Ip", MaxUploadBytes: 1024})

	send := func(clientIP string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		// every request arrives from the gateway
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Real-Ip", clientIP)
		req.Header.Set("X-Forwarded-For", clientIP)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	codes := make([]int, 0, 5)
	for i := 1; i <= 5; i++ {
		codes = append(codes, send(fmt.Sprintf("203.0.113.%d", i)))
	}
	for _, code := range codes {
		assert.Equal(t, http.StatusUnauthorized, code)
	}

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusUnauthorized, send("203.0.113.1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.1"))
}

func TestRegister_BadRate(t *testing.T) {
	err := Register(echo.New(), &config.Config{AuthRateLimit: "lots"}, zerolog.Nop(), nil, nil, Handlers{
		Health: handler.NewHealthHandler(nil),
	})
	assert.Error(t, err)
}

func TestValidator(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
	}
	v := NewValidator()

	assert.NoError(t, v.Validate(&payload{Email: "a@b.co"}))
	err := v.Validate(&payload{Email: "nope"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "Email"))
}
