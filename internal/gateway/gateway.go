// Package gateway is the public entry point in front of the auth and git
// services. It checks access tokens for protected routes and proxies the
// request, token included, to an upstream picked round robin.
package gateway

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"fruitygit/internal/auth"
	apperrors "fruitygit/internal/errors"
	"fruitygit/internal/logger"
	"fruitygit/internal/metrics"
	"fruitygit/internal/middleware"
)

// Options configures the gateway.
type Options struct {
	AuthUpstreams  []string
	GitUpstreams   []string
	AllowedOrigins []string
	MaxBodyBytes   int64
	Development    bool
}

// protectedAuthRoutes need a valid token even though the auth service also checks.
var protectedAuthRoutes = map[string]bool{
	"/api/auth/logout": true,
	"/api/auth/me":     true,
	"/api/auth/search": true,
}

// New builds the gateway echo instance.
func New(opts Options, log zerolog.Logger, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) (*echo.Echo, error) {
	authBalancer, err := balancer(opts.AuthUpstreams)
	if err != nil {
		return nil, fmt.Errorf("auth upstreams: %w", err)
	}
	gitBalancer, err := balancer(opts.GitUpstreams)
	if err != nil {
		return nil, fmt.Errorf("git upstreams: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	// the peer address is the client; the proxy then overwrites any X-Real-Ip
	// a client sent with it before forwarding
	e.IPExtractor = echo.ExtractIPDirect()

	e.Use(echomw.RequestID())
	e.Use(logger.RequestLogger(log))
	e.Use(echomw.Recover())
	e.Use(metrics.Middleware("gateway"))
	e.Use(middleware.Secure(middleware.SecureOptions(opts.Development)))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: opts.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", metrics.Handler())

	requireAuth := auth.Middleware(jwtService, tokenStore)

	authProxy := proxy(authBalancer, log)
	e.Group("/api/auth", echomw.BodyLimit("1M"), func(next echo.HandlerFunc) echo.HandlerFunc {
		guarded := requireAuth(next)
		return func(c echo.Context) error {
			if protectedAuthRoutes[c.Request().URL.Path] {
				return guarded(c)
			}
			return next(c)
		}
	}, authProxy)

	gitLimit := echomw.BodyLimit(fmt.Sprintf("%d", opts.MaxBodyBytes))
	if opts.MaxBodyBytes <= 0 {
		gitLimit = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	e.Group("/api/git", gitLimit, requireAuth, proxy(gitBalancer, log))

	return e, nil
}

func balancer(upstreams []string) (echomw.ProxyBalancer, error) {
	if len(upstreams) == 0 {
		return nil, fmt.Errorf("at least one upstream is required")
	}
	targets := make([]*echomw.ProxyTarget, 0, len(upstreams))
	for _, raw := range upstreams {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse upstream %q: %w", raw, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("upstream %q must be an absolute URL", raw)
		}
		targets = append(targets, &echomw.ProxyTarget{Name: u.Host, URL: u})
	}
	return echomw.NewRoundRobinBalancer(targets), nil
}

func proxy(b echomw.ProxyBalancer, log zerolog.Logger) echo.MiddlewareFunc {
	return echomw.ProxyWithConfig(echomw.ProxyConfig{
		Balancer:   b,
		RetryCount: 1,
		// Only connection failures are retried; a request body already sent
		// upstream cannot be replayed.
		RetryFilter: func(c echo.Context, err error) bool {
			if he, ok := err.(*echo.HTTPError); ok {
				return he.Code == http.StatusBadGateway && c.Request().ContentLength == 0
			}
			return false
		},
		ErrorHandler: func(c echo.Context, err error) error {
			log.Warn().Err(err).Str("path", c.Request().URL.Path).Msg("upstream unavailable")
			return echo.NewHTTPError(http.StatusBadGateway, apperrors.ErrorResponse{
				Error: "upstream unavailable",
				Code:  "BAD_GATEWAY",
			})
		},
	})
}
