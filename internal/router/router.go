package router

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"fruitygit/internal/auth"
	"fruitygit/internal/config"
	"fruitygit/internal/handler"
	"fruitygit/internal/logger"
	"fruitygit/internal/metrics"
	"fruitygit/internal/middleware"
)

// multipartOverhead is allowed on top of the file limit for form fields and boundaries.
const multipartOverhead = 1 << 20

// Handlers groups everything the server mounts.
type Handlers struct {
	Auth   *handler.AuthHandler
	User   *handler.UserHandler
	Repo   *handler.RepositoryHandler
	Health *handler.HealthHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log zerolog.Logger,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	h Handlers,
) error {
	e.Use(echomw.RequestID())
	e.Use(logger.RequestLogger(log))
	e.Use(echomw.Recover())
	e.Use(metrics.Middleware("server"))

	e.Validator = NewValidator()

	e.GET("/healthz", h.Health.Health)
	e.GET("/metrics", metrics.Handler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	requireAuth := auth.Middleware(jwtService, tokenStore)

	limit, err := middleware.RateLimit(cfg.AuthRateLimit, cfg.RateLimitIPHeader)
	if err != nil {
		return fmt.Errorf("auth rate limit: %w", err)
	}
	MountAuth(api.Group("/auth", limit), h, requireAuth)

	git := api.Group("/git",
		echomw.BodyLimit(fmt.Sprintf("%d", cfg.MaxUploadBytes+multipartOverhead)),
		requireAuth,
	)
	MountGit(git, h)
	return nil
}

// MountAuth registers the auth API on g.
func MountAuth(g *echo.Group, h Handlers, requireAuth echo.MiddlewareFunc) {
	g.POST("/register", h.Auth.Register)
	g.POST("/login", h.Auth.Login)
	g.POST("/refresh", h.Auth.Refresh)
	g.GET("/validate", h.Auth.Validate)

	g.POST("/logout", h.Auth.Logout, requireAuth)
	g.GET("/me", h.User.Me, requireAuth)
	g.GET("/search", h.User.Search, requireAuth)
}

// MountGit registers the git API on g. Authentication is applied by the caller.
func MountGit(g *echo.Group, h Handlers) {
	g.POST("/repositories", h.Repo.List)
	g.POST("/:repo/init", h.Repo.Init)
	g.POST("/:repo/commit", h.Repo.Commit)
	g.POST("/:repo/history", h.Repo.History)
	g.POST("/:repo/download", h.Repo.Download)
	g.POST("/:repo/files", h.Repo.Files)
	g.POST("/:repo/delete", h.Repo.Delete)
	g.GET("/:repo", h.Repo.Get)
	g.PATCH("/:repo", h.Repo.Update)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns an echo.Validator backed by go-playground/validator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
