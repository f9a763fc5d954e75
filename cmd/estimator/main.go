package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ftrhpr/estimator-sub002/internal/config"
	"github.com/ftrhpr/estimator-sub002/internal/domain"
	"github.com/ftrhpr/estimator-sub002/internal/handler"
	"github.com/ftrhpr/estimator-sub002/internal/infra/cache"
	"github.com/ftrhpr/estimator-sub002/internal/infra/cpanel"
	fsinfra "github.com/ftrhpr/estimator-sub002/internal/infra/firestore"
	"github.com/ftrhpr/estimator-sub002/internal/infra/observability"
	"github.com/ftrhpr/estimator-sub002/internal/infra/pdf"
	"github.com/ftrhpr/estimator-sub002/internal/infra/resilience"
	"github.com/ftrhpr/estimator-sub002/internal/service"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = godotenv.Load()

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("firestore_project", cfg.FirestoreProjectID),
		zap.String("cpanel_base_url", cfg.CPanelBaseURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("catalog_cache_ttl", cfg.CatalogCacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "estimator-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Firestore ---
	ctx := context.Background()
	fsClient, err := fsinfra.NewClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentials)
	if err != nil {
		logger.Fatal("failed to init firestore", zap.Error(err))
	}
	defer fsClient.Close()

	inspectionStore := fsinfra.NewInspectionsStore(fsClient, cfg.InspectionsCollection, logger)
	catalogStore := fsinfra.NewCatalogStore(fsClient, cfg.CatalogCollection, logger)

	// --- CPanel client ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("cpanel")
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	cpanelClient := cpanel.NewClient(httpClient, cfg.CPanelBaseURL, cfg.CPanelAPIToken, cb, resilienceCfg)

	// --- Cache ---
	catalogCache := cache.New[[]domain.CatalogItem](cfg.CatalogCacheTTL)

	// --- PDF renderer ---
	renderer := pdf.NewInvoiceRenderer(cfg.ShopName, cfg.ShopAddress, cfg.ShopPhone)

	// --- Services ---
	analyticsSvc := service.NewAnalyticsService(
		inspectionStore, cpanelClient, cpanelClient, metrics, logger, cfg.CPanelInvoiceLimit,
	)
	inspectionSvc := service.NewInspectionService(inspectionStore, logger)
	catalogSvc := service.NewCatalogService(catalogStore, catalogCache, metrics, logger)
	invoiceSvc := service.NewInvoiceService(inspectionStore, cpanelClient, renderer, logger)
	authSvc := service.NewAuthService(cfg.ShopPINHash, cfg.JWTSecret, cfg.JWTAccessTTL, logger)
	if cfg.ShopPINHash == "" {
		logger.Warn("SHOP_PIN_HASH not set, login is disabled")
	}

	// --- Router ---
	router := handler.NewRouter(
		analyticsSvc, inspectionSvc, catalogSvc, invoiceSvc, authSvc,
		metrics, logger,
		[]handler.HealthCheck{
			{Name: "firestore", Check: func(ctx context.Context) error {
				return fsinfra.Ping(ctx, fsClient)
			}},
		},
	)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
