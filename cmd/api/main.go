package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"postify/internal/adapter/repo"
	"postify/internal/calendar"
	"postify/internal/compositor"
	"postify/internal/content"
	"postify/internal/delivery"
	"postify/internal/distribution"
	"postify/internal/http/handlers"
	httpapi "postify/internal/http/httpapi"
	"postify/internal/infra"
	"postify/internal/providers/genai"
	"postify/internal/scheduler"
)

func main() {
	// .env is optional.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	genaiClient, err := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		TextModel:  cfg.GeminiTextModel,
		ImageModel: cfg.GeminiImageModel,
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build genai client")
	}

	comp, err := compositor.New(compositor.Options{
		BrandOverlayPath: cfg.BrandOverlayPath,
		BrandLogoPath:    cfg.BrandLogoPath,
		FooterFontPath:   cfg.FooterFontPath,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load brand assets")
	}

	sender, err := delivery.NewClient(delivery.Options{
		URL:        cfg.SendMediaURL,
		HTTPClient: &http.Client{Timeout: cfg.SendTimeout},
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build delivery client")
	}

	generator := content.NewGenerator(genaiClient, logger)
	registry := distribution.NewRegistry()
	orchestrator := distribution.NewOrchestrator(generator, comp, sender, registry, logger)

	app := &handlers.App{
		Holidays:     repo.NewHolidayRepository(dbpool),
		Subscribers:  repo.NewSubscriberRepository(dbpool),
		Calendar:     calendar.NewSource(cfg.HolidayCSVPath),
		Generator:    generator,
		Compositor:   comp,
		Delivery:     sender,
		Registry:     registry,
		Orchestrator: orchestrator,
		Config:       cfg,
		Logger:       logger,
	}

	if cfg.DailyDistributeCron != "" {
		daily, err := scheduler.NewDaily(cfg.DailyDistributeCron, func(ctx context.Context) error {
			job, err := app.StartSubscriberDistribution(ctx, "")
			if err != nil {
				return err
			}
			logger.Info().Str("job_id", job.JobID).Str("holiday", job.Holiday).Msg("daily distribution started")
			return nil
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid daily distribution schedule")
		}
		daily.Start()
		defer daily.Stop()
	}

	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
