package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/tienda-pos/tienda/internal/app"
	"github.com/tienda-pos/tienda/internal/catalog/categories"
	"github.com/tienda-pos/tienda/internal/catalog/products"
	"github.com/tienda-pos/tienda/internal/observability"
	"github.com/tienda-pos/tienda/internal/platform/db"
	"github.com/tienda-pos/tienda/internal/sales/customers"
	"github.com/tienda-pos/tienda/internal/sales/pos"
	"github.com/tienda-pos/tienda/jobs"
)

func main() {
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
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := observability.NewMetrics()

	categoryRepo := categories.NewRepository(pool)
	productRepo := products.NewRepository(pool)
	productService := products.NewService(productRepo, categoryRepo, nil)

	customerRepo := customers.NewRepository(pool)
	customerService := customers.NewService(customerRepo)

	saleRepo := pos.NewRepository(pool)

	receiptJob := jobs.NewSaleReceiptJob(saleRepo, customerService, jobs.LogMailSender{Logger: logger}, logger)
	lowStockJob := jobs.NewLowStockScanJob(productService, metrics, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSaleReceipt, Handler: receiptJob.Handle},
			{Type: jobs.TaskTypeLowStockScan, Handler: lowStockJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{
				Spec:    "@every " + cfg.LowStockScanInterval.String(),
				Task:    jobs.NewLowStockScanTask(),
				Options: []asynq.Option{asynq.MaxRetry(3)},
			},
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
