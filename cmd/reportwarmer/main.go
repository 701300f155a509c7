package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-pos-sales/internal/config"
	kafkax "github.com/ariefcatur/go-pos-sales/internal/kafka"
	"github.com/ariefcatur/go-pos-sales/internal/logx"
	"github.com/ariefcatur/go-pos-sales/internal/postgres"
	"github.com/ariefcatur/go-pos-sales/internal/redisx"
	"github.com/ariefcatur/go-pos-sales/internal/reportwarmer"
	"github.com/ariefcatur/go-pos-sales/internal/sales"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	service := cfg.ServiceName + "-reportwarmer"

	logger, err := logx.New(cfg.LogLevel, service)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	loc, err := time.LoadLocation(cfg.ReportTZ)
	if err != nil {
		logger.Fatal("report time zone", zap.String("tz", cfg.ReportTZ), zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Open(ctx, postgres.Options{DSN: cfg.PostgresDSN, MaxConns: 4}, logger)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &reportwarmer.Service{
		Reports: sales.NewReporter(&sales.Repo{DB: db}, redisx.NewReportCache(rdb, cfg.ReportTZ, cfg.ReportCacheTTL), loc, logger),
		Dedup:   redisx.NewDedup(rdb, service),
		Log:     logger,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.WarmerGroup, sales.TopicSaleRecorded, cfg.WarmerWorkers, logger)
	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("report warmer started",
			zap.String("group", cfg.WarmerGroup),
			zap.String("topic", sales.TopicSaleRecorded),
			zap.Int("workers", cfg.WarmerWorkers))
		if err := cons.Start(ctx, svc.HandleSaleRecorded); err != nil {
			logger.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.Info("shutting down consumer")
	cancel()
	<-done
}
