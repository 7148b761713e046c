package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/dukkan-erp/dukkan-erp/internal/app"
	"github.com/dukkan-erp/dukkan-erp/internal/checkout"
	"github.com/dukkan-erp/dukkan-erp/internal/ledger"
	"github.com/dukkan-erp/dukkan-erp/internal/observability"
	"github.com/dukkan-erp/dukkan-erp/internal/platform/cache"
	"github.com/dukkan-erp/dukkan-erp/internal/platform/db"
	"github.com/dukkan-erp/dukkan-erp/internal/pricing"
	"github.com/dukkan-erp/dukkan-erp/internal/rbac"
	"github.com/dukkan-erp/dukkan-erp/internal/settlement"
	"github.com/dukkan-erp/dukkan-erp/internal/zones"
	"github.com/dukkan-erp/dukkan-erp/jobs"
)

func main() {
	_ = godotenv.Load()

	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	zonesRepo := zones.NewRepository(dbpool)
	zonesService := zones.NewService(zonesRepo)
	zonesHandler := zones.NewHandler(logger, zonesService)

	priceLookup := pricing.NewCachedLookup(pricing.NewRepository(dbpool), redisClient, cfg.PriceCacheTTL)
	aggregator := pricing.NewAggregator(priceLookup, logger, metrics)

	checkoutRepo := checkout.NewRepository(dbpool)
	payments := checkout.PaymentConfig{EnabledMethods: cfg.EnabledPaymentMethods()}
	checkoutService := checkout.NewService(zonesService, aggregator, checkoutRepo, payments, logger, metrics)
	loyalty := pricing.LoyaltySettings{ProgramEnabled: cfg.LoyaltyEnabled}
	profiles := checkout.ProfileSource(checkoutRepo)
	if cfg.RulePackPath != "" {
		pack, err := pricing.LoadRulePack(cfg.RulePackPath)
		if err != nil {
			logger.Error("load rule pack", slog.Any("error", err))
			os.Exit(1)
		}
		profiles = checkout.RulePackSource{ProfileSource: profiles, Pack: pack}
	}
	checkoutHandler := checkout.NewHandler(logger, checkoutService, profiles, loyalty)

	ledgerRepo := ledger.NewRepository(dbpool)
	ledgerService := ledger.NewService(ledgerRepo, logger)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	settlementRepo := settlement.NewRepository(dbpool)
	settlementService := settlement.NewService(settlementRepo, logger, metrics)
	settlementHandler := settlement.NewHandler(logger, settlementService, ledgerService)

	rbacService := rbac.NewService(dbpool)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		ZonesHandler:      zonesHandler,
		CheckoutHandler:   checkoutHandler,
		LedgerHandler:     ledgerHandler,
		SettlementHandler: settlementHandler,
		JobHandler:        jobHandler,
		RBACMiddleware:    rbacMiddleware,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
