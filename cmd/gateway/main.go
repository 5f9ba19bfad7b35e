package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"fruitygit/internal/auth"
	"fruitygit/internal/cache"
	"fruitygit/internal/config"
	"fruitygit/internal/gateway"
	"fruitygit/internal/logger"
)

// multipartOverhead matches the server's allowance on top of the upload limit.
const multipartOverhead = 1 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", false)
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty).With().Str("service", "gateway").Logger()

	// Shares the blacklist with the auth service so logged out tokens stop at the edge.
	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)

	e, err := gateway.New(options(cfg), log, jwtService, auth.NewTokenStore(cacheClient))
	if err != nil {
		log.Fatal().Err(err).Msg("gateway init")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("addr", ":"+cfg.GatewayPort).
			Strs("auth_upstreams", cfg.GatewayAuthUpstreams).
			Strs("git_upstreams", cfg.GatewayGitUpstreams).
			Msg("gateway listening")
		if err := e.Start(":" + cfg.GatewayPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
		log.Fatal().Err(err).Msg("gateway stopped")
	}
	log.Info().Msg("gateway stopped")
}

func options(cfg *config.Config) gateway.Options {
	return gateway.Options{
		AuthUpstreams:  cfg.GatewayAuthUpstreams,
		GitUpstreams:   cfg.GatewayGitUpstreams,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		MaxBodyBytes:   cfg.MaxUploadBytes + multipartOverhead,
		Development:    cfg.LogPretty,
	}
}
