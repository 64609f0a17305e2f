package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"wrapstudio/internal/adapter/repo"
	"wrapstudio/internal/db"
	"wrapstudio/internal/domain"
	"wrapstudio/internal/http/handlers"
	httpapi "wrapstudio/internal/http/httpapi"
	"wrapstudio/internal/imagegen"
	"wrapstudio/internal/infra"
	"wrapstudio/internal/infra/credentials"
	"wrapstudio/internal/infra/geoip"
	"wrapstudio/internal/middleware"
	"wrapstudio/internal/storage"
	"wrapstudio/internal/studio"
)

func main() {
	// Muat .env (opsional)
	_ = godotenv.Load()

	// Konfigurasi & logger
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)
	ctx := context.Background()

	// Database bersifat opsional: tanpa DATABASE_URL sesi disimpan di memori
	// dan statistik generasi dimatikan.
	var (
		pool  *pgxpool.Pool
		sqlDB *sql.DB
		stats domain.GenerationRepository = repo.NopGenerationRepository{}
		creds *credentials.Store
	)
	if cfg.HasDatabase() {
		pool, err = infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()

		sqlDB, err = infra.OpenSQLDB(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open database handle")
		}
		defer sqlDB.Close()

		if err := db.Migrate(ctx, sqlDB); err != nil {
			logger.Fatal().Err(err).Msg("failed to apply migrations")
		}

		runner := infra.NewSQLRunner(pool, logger)
		stats = repo.NewGenerationRepository(runner)
		creds = credentials.NewStore(runner)
	} else {
		logger.Warn().Msg("DATABASE_URL not set; sessions are in-memory and stats are disabled")
	}

	// Generator gambar: provider utama dengan cadangan sintetis
	generator := newGenerator(ctx, cfg, creds, &logger)

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare storage")
	}

	registry := studio.NewRegistry(store, cfg.StudioIdleTTL, &logger)
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go registry.Run(sweepCtx, time.Minute)

	svc := studio.NewService(studio.ServiceOptions{
		Generator: generator,
		Logos:     store,
		Recorder:  stats,
		Timeout:   cfg.GenerationTimeout,
		Logger:    &logger,
	})

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()
	var lookup middleware.CountryLookup
	if resolver.Enabled() {
		lookup = resolver.CountryCode
	}

	sessions := infra.NewSessionManager(sqlDB, cfg)

	// App container
	app := handlers.NewApp(cfg, &logger, sessions, registry, svc, store, stats)

	// Bangun router via package httpapi (sudah ada middleware chi di dalamnya)
	router := httpapi.NewRouter(app, lookup)

	// HTTP server wrapper dari infra
	server := infra.NewHTTPServer(cfg, router)

	// Start async
	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("provider", svc.ProviderName()).
			Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if err := svc.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("generation requests did not finish")
	}
	stopSweep()
	logger.Info().Msg("server stopped")
}

func newGenerator(ctx context.Context, cfg *infra.Config, creds *credentials.Store, logger *infra.Logger) imagegen.Generator {
	synthetic := imagegen.NewSyntheticGenerator()

	var primary imagegen.Generator
	switch cfg.ImageProvider {
	case credentials.ProviderGemini:
		key, err := creds.Resolve(ctx, credentials.ProviderGemini, cfg.GeminiAPIKey)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to load gemini api key")
		}
		primary = imagegen.NewGeminiClient(imagegen.GeminiOptions{
			APIKey:  key,
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
			Logger:  logger,
		})
	case credentials.ProviderQwen:
		key, err := creds.Resolve(ctx, credentials.ProviderQwen, cfg.QwenAPIKey)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to load qwen api key")
		}
		primary = imagegen.NewQwenClient(imagegen.QwenOptions{
			APIKey:  key,
			BaseURL: cfg.QwenBaseURL,
			Model:   cfg.QwenModel,
			Timeout: cfg.GenerationTimeout,
			Logger:  logger,
		})
	default:
		return synthetic
	}
	return imagegen.NewFallbackGenerator(primary, synthetic)
}
