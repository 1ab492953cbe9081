package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"RentalLedger/internal/clock"
	"RentalLedger/internal/config"
	"RentalLedger/internal/logger"
	"RentalLedger/internal/models"
	"RentalLedger/internal/notify"
	"RentalLedger/internal/services"
	"RentalLedger/internal/store"
	"RentalLedger/internal/worker"

	"go.uber.org/zap"
)

// worker runs the reminder monitor on its own, for setups where rentald is
// started with reminders disabled. It only ever writes the alerted set.
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	docs, err := store.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		lg.Fatal("store open failed", zap.Error(err))
	}
	defer func() { _ = docs.Close() }()

	clk := clock.NewSystem()
	ledger := services.NewLedger(docs, services.Options{Clock: clk, Logger: lg})

	w := &worker.Monitor{
		Ledger:   worker.Refreshing{Ledger: ledger},
		Notifier: notify.Log{Logger: lg.Named("reminders")},
		Clock:    clk,
		Interval: cfg.ReminderInterval(),
		Logger:   lg.Named("worker.reminders"),
	}
	lg.Info("worker started", zap.String("storage", cfg.Storage.Driver), zap.Duration("interval", w.Interval))
	w.Run(ctx)
}
