package worker

import (
	"context"
	"sync"
	"time"

	"RentalLedger/internal/clock"
	"RentalLedger/internal/metrics"
	"RentalLedger/internal/models"
	"RentalLedger/internal/notify"

	"go.uber.org/zap"
)

const DefaultInterval = 10 * time.Second

// Claimer hands out reminders for orders that have ended and were never
// reminded about. services.Ledger satisfies it.
type Claimer interface {
	ClaimReminders(ctx context.Context, now time.Time) ([]models.Reminder, error)
}

// Reloader is a Claimer whose state can be reread from storage.
type Reloader interface {
	Claimer
	Load(ctx context.Context) error
}

// Refreshing reloads the ledger before every claim. It is for a monitor
// running in a different process from the one that edits orders.
type Refreshing struct {
	Ledger Reloader
}

func (r Refreshing) ClaimReminders(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	if err := r.Ledger.Load(ctx); err != nil {
		return nil, err
	}
	return r.Ledger.ClaimReminders(ctx, now)
}

// Monitor periodically claims due reminders and passes them to a Notifier.
type Monitor struct {
	Ledger   Claimer
	Notifier notify.Notifier
	Clock    clock.Clock
	Interval time.Duration
	Logger   *zap.Logger
	Metrics  *metrics.Metrics

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Start runs the monitor in the background until Stop is called or ctx ends.
// Calling Start on a running monitor does nothing.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel, m.done = cancel, done
	go func() {
		defer close(done)
		m.Run(ctx)
	}()
}

// Stop cancels a started monitor and waits for the in-flight tick to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Run ticks immediately and then on every interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	interval := m.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log := m.logger()
	log.Info("reminder monitor started", zap.Duration("interval", interval))
	for {
		if err := m.Tick(ctx); err != nil && ctx.Err() == nil {
			log.Warn("reminder tick failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			log.Info("reminder monitor stopped")
			return
		case <-ticker.C:
		}
	}
}

// Tick claims due reminders once and delivers them. Claimed ids are already
// persisted, so a failed delivery is logged but not retried.
func (m *Monitor) Tick(ctx context.Context) error {
	now := time.Now()
	if m.Clock != nil {
		now = m.Clock.Now()
	}
	due, err := m.Ledger.ClaimReminders(ctx, now)
	m.Metrics.ObserveTick(err)
	if err != nil {
		return err
	}
	log := m.logger()
	for _, r := range due {
		if m.Notifier == nil {
			continue
		}
		if err := m.Notifier.Notify(ctx, r); err != nil {
			log.Warn("reminder delivery failed", zap.String("order_id", r.OrderID), zap.Error(err))
		}
	}
	if len(due) > 0 {
		log.Info("reminders sent", zap.Int("count", len(due)))
	}
	return nil
}

func (m *Monitor) logger() *zap.Logger {
	if m.Logger == nil {
		return zap.NewNop()
	}
	return m.Logger
}
