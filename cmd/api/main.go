package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/adapter/repo"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/http/handlers"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/http/httpapi"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/infra"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/infra/geoip"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/middleware"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/realtime"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/salawat"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		logger := infra.NewLogger(os.Getenv("APP_ENV"))
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	if err := repo.EnsureSchema(ctx, runner); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply schema")
	}

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		defer resolver.Close()
		lookup = resolver.Lookup
	}

	hub := realtime.NewHub(logger)
	listener := realtime.NewListener(realtime.PoolDialer(dbpool), hub, logger)

	svc := salawat.NewService(repo.NewCampaignRepository(runner), logger)
	app := handlers.NewApp(svc, hub, logger)
	app.Heartbeat = cfg.SSEHeartbeat

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		DefaultLocale:  cfg.DefaultLocale,
		CountryLookup:  lookup,
	})
	server := infra.NewHTTPServer(cfg, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := listener.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		// Event streams never finish on their own; end them before draining.
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}
	logger.Info().Msg("server stopped")
}
