package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"parkguard-service/internal/cache"
	"parkguard-service/internal/catalog"
	"parkguard-service/internal/config"
	httpapi "parkguard-service/internal/http"
	"parkguard-service/internal/repository"
	"parkguard-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", "parkguard").Logger()

	cat, err := catalog.Load(cfg.Catalog.Path, cfg.Catalog.Jurisdiction, cfg.Catalog.Currency)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load fine catalog")
	}
	log.Info().Int("bands", cat.Len()).Str("jurisdiction", cat.Jurisdiction).Msg("fine catalog loaded")

	// One process-wide cache shared by every upstream-facing component.
	upstreamCache := cache.NewTTL[[]repository.Row]()

	client := repository.NewSocrataClient(cfg.Upstream.BaseURL, cfg.Upstream.RequestTimeout, log)
	hydrants := repository.NewHydrantRepository(client, upstreamCache, cfg.Upstream.HydrantDatasets, cfg.Upstream.HydrantTTL, log)
	curb := repository.NewCurbRepository(
		client, upstreamCache,
		cfg.Upstream.RegulationsDataset, cfg.Upstream.MetersDataset,
		cfg.Upstream.RegulationTTL, cfg.Upstream.MeterTTL,
		log,
	)

	estimator := service.NewViolationEstimator(cat, cfg.Catalog.HighRiskFineUSD)
	decider := service.NewDecisionEngine(cfg.Decision)
	parkingService, err := service.NewParkingService(curb, hydrants, estimator, decider, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build parking service")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpapi.RequestID())
	r.Use(httpapi.AccessLog(log))
	corsCfg := cors.Config{
		AllowMethods: []string{http.MethodGet},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}
	if len(cfg.Server.AllowOrigins) == 1 && cfg.Server.AllowOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.Server.AllowOrigins
	}
	r.Use(cors.New(corsCfg))

	httpapi.NewHandler(parkingService, upstreamCache, log).Register(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	upstreamCache.Clear()
}
