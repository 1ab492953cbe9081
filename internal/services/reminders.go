package services

import (
	"context"
	"time"

	"RentalLedger/internal/models"
	"RentalLedger/internal/store"

	"go.uber.org/zap"
)

// ClaimReminders finds every order that is not completed and whose end date
// is at or before now, and that has never been reminded about. The ids are
// added to the alerted set, which is persisted before the reminders are
// returned; a failed write leaves the set unchanged. Open-ended orders never
// produce reminders.
func (l *Ledger) ClaimReminders(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var due []models.Reminder
	for _, o := range l.orders {
		if o.Status == models.OrderCompleted || o.EndDate == nil {
			continue
		}
		if o.EndDate.After(now) {
			continue
		}
		if _, done := l.alertedSet[o.ID]; done {
			continue
		}
		due = append(due, models.Reminder{
			OrderID:     o.ID,
			ProductName: o.ProductName,
			UserName:    o.UserName,
			EndDate:     *o.EndDate,
		})
	}
	if len(due) == 0 {
		return nil, nil
	}

	next := append([]string(nil), l.alerted...)
	for _, r := range due {
		next = append(next, r.OrderID)
	}
	if err := l.writeDoc(ctx, store.KeyAlerted, next); err != nil {
		l.observe("claim_reminders", err)
		return nil, err
	}
	l.alerted = next
	for _, r := range due {
		l.alertedSet[r.OrderID] = struct{}{}
	}
	l.metrics.AddReminders(len(due))
	l.log.Debug("reminders claimed", zap.Int("count", len(due)))
	return due, nil
}
