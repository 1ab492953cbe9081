package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"RentalLedger/internal/backup"
	"RentalLedger/internal/calendar"
	"RentalLedger/internal/clock"
	"RentalLedger/internal/config"
	internalhttp "RentalLedger/internal/http"
	"RentalLedger/internal/logger"
	"RentalLedger/internal/metrics"
	"RentalLedger/internal/models"
	"RentalLedger/internal/notify"
	"RentalLedger/internal/services"
	"RentalLedger/internal/store"
	"RentalLedger/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	lg, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	loc, err := cfg.TimeLocation()
	if err != nil {
		lg.Fatal("timezone", zap.Error(err))
	}
	models.Location = loc

	policy, err := calendar.ParseOpenEndedPolicy(cfg.Calendar.OpenEnded)
	if err != nil {
		lg.Fatal("calendar policy", zap.Error(err))
	}

	ctx := context.Background()
	docs, err := store.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		lg.Fatal("store open failed", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer func() { _ = docs.Close() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	clk := clock.NewSystem()
	ledger := services.NewLedger(docs, services.Options{
		Clock:               clk,
		Logger:              lg,
		Metrics:             m,
		AutoCompleteExpired: cfg.Orders.AutoCompleteExpired,
	})
	if err := ledger.Load(ctx); err != nil {
		lg.Fatal("ledger load failed", zap.Error(err))
	}

	target, err := backup.NewTarget(ctx, cfg.Backup.Target, cfg.Backup.Dir, backup.S3Config{
		Bucket:          cfg.Backup.S3.Bucket,
		Region:          cfg.Backup.S3.Region,
		Endpoint:        cfg.Backup.S3.Endpoint,
		Prefix:          cfg.Backup.S3.Prefix,
		AccessKeyID:     cfg.Backup.S3.AccessKeyID,
		SecretAccessKey: cfg.Backup.S3.SecretAccessKey,
		PathStyle:       cfg.Backup.S3.PathStyle,
	})
	if err != nil {
		lg.Fatal("backup target", zap.Error(err))
	}

	hub := notify.NewHub(lg.Named("ws"))
	defer hub.Close()

	monitor := &worker.Monitor{
		Ledger:   ledger,
		Notifier: notify.Multi{notify.Log{Logger: lg.Named("reminders")}, hub},
		Clock:    clk,
		Interval: cfg.ReminderInterval(),
		Logger:   lg.Named("worker.reminders"),
		Metrics:  m,
	}
	if cfg.Reminders.Enabled {
		monitor.Start(ctx)
		defer monitor.Stop()
	}

	h := internalhttp.NewHandler(ledger)
	h.Backups = target
	h.Clock = clk
	h.CalendarPolicy = policy
	h.Logger = lg.Named("http")
	srv := internalhttp.NewServer(h, internalhttp.ServerOptions{
		CORSOrigins: cfg.Server.CORSOrigins,
		Gatherer:    reg,
		Reminders:   hub,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("api listening", zap.String("addr", cfg.Server.Addr), zap.String("storage", cfg.Storage.Driver))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
	lg.Info("api stopped")
}
