package notify

import (
	"context"
	"errors"

	"RentalLedger/internal/models"

	"go.uber.org/zap"
)

// Notifier delivers a reminder to whoever is watching.
type Notifier interface {
	Notify(ctx context.Context, r models.Reminder) error
}

// Log writes reminders to a zap logger.
type Log struct {
	Logger *zap.Logger
}

func (n Log) Notify(_ context.Context, r models.Reminder) error {
	if n.Logger == nil {
		return nil
	}
	n.Logger.Info(r.Message(),
		zap.String("order_id", r.OrderID),
		zap.Time("end_date", r.EndDate),
	)
	return nil
}

// Multi fans a reminder out to every notifier, returning the joined errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, r models.Reminder) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
