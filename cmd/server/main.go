package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	_ "fruitygit/docs" // swagger docs

	"fruitygit/internal/auth"
	"fruitygit/internal/cache"
	"fruitygit/internal/config"
	"fruitygit/internal/db"
	"fruitygit/internal/handler"
	"fruitygit/internal/logger"
	"fruitygit/internal/repository"
	"fruitygit/internal/router"
	"fruitygit/internal/service"
)

// @title FruityGit API
// @version 1.0
// @description Git hosting backend: accounts, JWT sessions and repositories you can commit files to, browse and download.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", false)
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}
	if cfg.ResetDB {
		log.Warn().Msg("RESET_DB set, dropping all tables")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		log.Fatal().Err(err).Msg("auto-migrate")
	}

	if err := os.MkdirAll(cfg.ReposRoot, 0o755); err != nil {
		log.Fatal().Err(err).Str("root", cfg.ReposRoot).Msg("create repository root")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	refreshRepo := repository.NewRefreshTokenRepository(gormDB)
	repoRepo := repository.NewRepoRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, refreshRepo, jwtService, tokenStore, cfg.RefreshTokenTTL, log)
	userService := service.NewUserService(userRepo, cacheClient)
	repoService := service.NewRepositoryService(repoRepo, cacheClient, cfg.ReposRoot, cfg.MaxUploadBytes, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	err = router.Register(e, cfg, log, jwtService, tokenStore, router.Handlers{
		Auth: handler.NewAuthHandler(authService),
		User: handler.NewUserHandler(userService),
		Repo: handler.NewRepositoryHandler(repoService),
		Health: handler.NewHealthHandler(map[string]handler.Check{
			"database": func(ctx context.Context) error { return db.Ping(ctx, gormDB) },
			"redis":    cacheClient.Ping,
		}),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("register routes")
	}

	log.Info().Str("url", swaggerURL(cfg.SwaggerHost, cfg.ServerPort)).Msg("swagger documentation available")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("server listening")
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

// swaggerURL accepts SWAGGER_HOST with or without scheme.
func swaggerURL(host, port string) string {
	switch {
	case host == "":
		return "http://localhost:" + port + "/swagger/index.html"
	case strings.HasPrefix(host, "http://"), strings.HasPrefix(host, "https://"):
		return host + "/swagger/index.html"
	default:
		return "http://" + host + "/swagger/index.html"
	}
}
