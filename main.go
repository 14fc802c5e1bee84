package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"marketplace-recon/internal/audit"
	"marketplace-recon/internal/auth"
	"marketplace-recon/internal/marketplace"
	"marketplace-recon/internal/observability/metrics"
	reconapp "marketplace-recon/internal/reconciliation/application"
	reconciliation "marketplace-recon/internal/reconciliation/domain"
	reconrepo "marketplace-recon/internal/reconciliation/infrastructure/postgres"
	reconhttp "marketplace-recon/internal/reconciliation/interfaces"
	reconnotify "marketplace-recon/internal/reconciliation/notify"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	shopRepo := reconrepo.NewShopRepository(db)
	itemRepo := reconrepo.NewOrderItemRepository(db)
	releaseRepo := reconrepo.NewReleaseRepository(db)

	defaultPolicy := reconciliation.Policy{
		CommissionPercent: cfg.DefaultCommissionPercent,
		FixedFeePerUnit:   cfg.DefaultFixedFeePerUnit,
	}
	shopService, err := reconapp.NewShopService(shopRepo, defaultPolicy, reconapp.SystemClock{})
	if err != nil {
		logger.Fatalf("shop service error: %v", err)
	}

	marketplaceClient, err := marketplace.NewClient(cfg.MarketplaceBaseURL, cfg.MarketplacePartnerID,
		marketplace.WithTimeout(cfg.MarketplaceTimeout),
		marketplace.WithRateLimit(cfg.MarketplaceRatePerMinute),
	)
	if err != nil {
		logger.Fatalf("marketplace client error: %v", err)
	}
	defer marketplaceClient.Close()

	syncService, err := reconapp.NewSyncService(shopRepo, marketplaceClient, itemRepo,
		reconapp.WithRetry(cfg.SyncAttempts, cfg.SyncBackoff),
		reconapp.WithSyncLogger(logger),
	)
	if err != nil {
		logger.Fatalf("sync service error: %v", err)
	}
	importer, err := reconapp.NewReleaseImporter(shopRepo, releaseRepo, logger)
	if err != nil {
		logger.Fatalf("release importer error: %v", err)
	}
	reportService, err := reconapp.NewReportService(shopRepo, itemRepo, releaseRepo, logger)
	if err != nil {
		logger.Fatalf("report service error: %v", err)
	}

	scheduleCfg, err := reconapp.LoadConfig()
	if err != nil {
		logger.Fatalf("recon config error: %v", err)
	}
	var notifier reconnotify.Notifier
	if scheduleCfg.Alerts.WebhookURL != "" {
		notifier = reconnotify.NewWebhookNotifier(scheduleCfg.Alerts.WebhookURL)
	}
	if cfg.SchedulerEnabled {
		scheduler := reconapp.NewScheduler(shopRepo, syncService, reportService, notifier, scheduleCfg, reconapp.SystemClock{}, logger)
		go scheduler.Start(context.Background())
		logger.Printf("recon scheduler: every=%s lookback_days=%d", scheduleCfg.Schedule.Every, scheduleCfg.Schedule.LookbackDays)
	}

	reconHandler, err := reconhttp.NewHandler(reconhttp.HandlerConfig{
		Shops:       shopService,
		Syncer:      syncService,
		Importer:    importer,
		Reports:     reportService,
		Items:       itemRepo,
		AuditLogger: auditRepo,
		Currency:    cfg.Currency,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatalf("recon handler error: %v", err)
	}

	authPolicy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), authPolicy)
	authMiddleware.Logger = logger

	mux := http.NewServeMux()
	mux.Handle("/api/v1/shops", reconHandler)
	mux.Handle("/api/v1/shops/", reconHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL              string
	HTTPAddr                 string
	JWTSecret                string
	Currency                 string
	DefaultCommissionPercent float64
	DefaultFixedFeePerUnit   float64
	MarketplaceBaseURL       string
	MarketplacePartnerID     int64
	MarketplaceTimeout       time.Duration
	MarketplaceRatePerMinute int
	SyncAttempts             int
	SyncBackoff              time.Duration
	SchedulerEnabled         bool
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:              getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:                 getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:                getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		Currency:                 getenvDefault("CURRENCY", "BRL"),
		DefaultCommissionPercent: getenvFloatDefault("DEFAULT_COMMISSION_PERCENT", reconciliation.DefaultCommissionPercent),
		DefaultFixedFeePerUnit:   getenvFloatDefault("DEFAULT_FIXED_FEE_PER_UNIT", reconciliation.DefaultFixedFeePerUnit),
		MarketplaceBaseURL:       getenvDefault("MARKETPLACE_BASE_URL", ""),
		MarketplacePartnerID:     int64(getenvIntDefault("MARKETPLACE_PARTNER_ID", 0)),
		MarketplaceTimeout:       getenvDuration("MARKETPLACE_TIMEOUT", 30*time.Second),
		MarketplaceRatePerMinute: getenvIntDefault("MARKETPLACE_RATE_PER_MINUTE", 0),
		SyncAttempts:             getenvIntDefault("SYNC_ATTEMPTS", 3),
		SyncBackoff:              getenvDuration("SYNC_BACKOFF", 500*time.Millisecond),
		SchedulerEnabled:         getenvDefault("RECON_SCHEDULER_ENABLED", "true") == "true",
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.MarketplaceBaseURL == "" {
		log.Fatal("MARKETPLACE_BASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
