package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/dukkan-erp/dukkan-erp/internal/app"
	"github.com/dukkan-erp/dukkan-erp/internal/ledger"
	"github.com/dukkan-erp/dukkan-erp/internal/observability"
	"github.com/dukkan-erp/dukkan-erp/internal/platform/db"
	"github.com/dukkan-erp/dukkan-erp/internal/settlement"
	"github.com/dukkan-erp/dukkan-erp/jobs"
)

func main() {
	_ = godotenv.Load()

	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := observability.NewMetrics()
	tasks := &jobs.Tasks{
		Ledger:  ledger.NewRepository(pool),
		Settler: settlement.NewRepository(pool),
		Logger:  logger,
		Metrics: metrics,
	}

	// The nightly sweep matches every party with offsetting open items;
	// party id 0 means all parties.
	autoSettleTask, err := jobs.NewAutoSettleTask(jobs.AutoSettlePayload{PartyID: 0})
	if err != nil {
		logger.Error("build auto settle task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Tasks:     tasks,
		Cron: []jobs.CronRegistration{
			{Spec: "0 2 * * *", Task: autoSettleTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
