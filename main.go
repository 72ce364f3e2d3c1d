package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"currency-converter-api/internal/api"
	"currency-converter-api/internal/cache"
	"currency-converter-api/internal/config"
	"currency-converter-api/internal/domain"
	"currency-converter-api/internal/logger"
	"currency-converter-api/internal/metrics"
	"currency-converter-api/internal/platform"
	"currency-converter-api/internal/provider"
	"currency-converter-api/internal/ratelimit"
	"currency-converter-api/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger := logger.New(cfg.LogLevel)

	// Shared infrastructure: cache, metrics, currency policy
	rateCache := cache.New()
	providerMetrics := metrics.NewProviderMetrics(prometheus.DefaultRegisterer)
	blacklist := domain.NewBlacklist(cfg.CurrencyBlacklist)

	// Providers and the routing factory, built once at startup
	frankfurter := provider.NewFrankfurterProvider(cfg, appLogger, rateCache, providerMetrics)
	providerFactory := provider.NewFactory(cfg.DefaultProvider, frankfurter)

	// Application services
	conversionService := service.NewConversionService(providerFactory, blacklist, appLogger)
	ratesService := service.NewRatesService(providerFactory, blacklist, appLogger)

	// Inbound rate limiter
	rateLimiter := ratelimit.NewLimiter(cfg, appLogger)

	// HTTP surface
	handlers := api.NewHandlers(conversionService, ratesService, appLogger).
		WithRateLimit(rateLimiter)
	router := handlers.SetupRoutes()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("Starting currency converter gateway on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Create a shutdown context that works across platforms
	shutdownCtx, stop := platform.NewShutdownContext(context.Background())
	defer stop()
	<-shutdownCtx.Done()

	appLogger.Info("Shutting down server...")

	// Stop rate limiter cleanup
	rateLimiter.Stop()

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Info("Server exited")
}
