package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-pos-sales/internal/catalog"
	"github.com/ariefcatur/go-pos-sales/internal/clock"
	"github.com/ariefcatur/go-pos-sales/internal/config"
	"github.com/ariefcatur/go-pos-sales/internal/httpx"
	kafkax "github.com/ariefcatur/go-pos-sales/internal/kafka"
	"github.com/ariefcatur/go-pos-sales/internal/logx"
	"github.com/ariefcatur/go-pos-sales/internal/postgres"
	"github.com/ariefcatur/go-pos-sales/internal/redisx"
	"github.com/ariefcatur/go-pos-sales/internal/sales"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logx.New(cfg.LogLevel, cfg.ServiceName)
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
	db, err := postgres.Open(ctx, postgres.Options{DSN: cfg.PostgresDSN, SeedCatalog: cfg.SeedCatalog}, logger)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, sales.TopicSaleRecorded, 1024, logger)
	prod.Start()

	clk := clock.Real{}
	products := &catalog.Repo{DB: db}
	store := &sales.Repo{DB: db}
	reporter := sales.NewReporter(store, redisx.NewReportCache(rdb, cfg.ReportTZ, cfg.ReportCacheTTL), loc, logger)

	router := httpx.NewRouter(logger)
	httpx.MountAPI(router,
		&httpx.SalesHandler{
			Recorder: sales.NewRecorder(products, store, clk, logger),
			Reporter: reporter,
			Events:   prod,
			Service:  cfg.ServiceName,
			Log:      logger,
		},
		&httpx.ReportsHandler{Reporter: reporter, Clock: clk, Log: logger},
		&httpx.ProductsHandler{Catalog: products, Log: logger},
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr), zap.String("report_tz", loc.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	prod.Close()      // stop accepting, flush what is queued
	prod.WaitClosed() // writer closed
}
