package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"RentalLedger/internal/models"
	"RentalLedger/internal/store"

	"go.uber.org/zap"
)

const BackupVersion = "1.0"

// Backup is the whole-ledger export. The alerted set is not part of it.
type Backup struct {
	Orders     []models.Order   `json:"orders"`
	Products   []models.Product `json:"products"`
	Expenses   []models.Expense `json:"expenses"`
	Theme      models.Theme     `json:"theme"`
	Currency   string           `json:"currency"`
	BackupDate time.Time        `json:"backupDate"`
	Version    string           `json:"version"`
}

func (l *Ledger) Export() Backup {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := Backup{
		Orders:     cloneOrders(l.orders),
		Products:   cloneProducts(l.products),
		Expenses:   append([]models.Expense(nil), l.expenses...),
		Theme:      l.theme,
		Currency:   l.currency,
		BackupDate: l.clock.Now().UTC(),
		Version:    BackupVersion,
	}
	if b.Orders == nil {
		b.Orders = []models.Order{}
	}
	if b.Products == nil {
		b.Products = []models.Product{}
	}
	if b.Expenses == nil {
		b.Expenses = []models.Expense{}
	}
	return b
}

type restorePlan struct {
	orders   []models.Order
	products []models.Product
	expenses []models.Expense
	theme    *models.Theme
	currency *string
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// parseBackup validates a backup document without touching storage.
func parseBackup(payload []byte) (restorePlan, error) {
	var plan restorePlan
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(payload, &doc); err != nil {
		return plan, fmt.Errorf("%w: %v", ErrMalformedBackup, err)
	}

	raw, ok := doc["orders"]
	if !ok || !isArray(raw) {
		return plan, fmt.Errorf("%w: orders must be an array", ErrMalformedBackup)
	}
	if err := json.Unmarshal(raw, &plan.orders); err != nil {
		return plan, fmt.Errorf("%w: orders: %v", ErrMalformedBackup, err)
	}

	raw, ok = doc["products"]
	if !ok || !isArray(raw) {
		return plan, fmt.Errorf("%w: products must be an array", ErrMalformedBackup)
	}
	if err := json.Unmarshal(raw, &plan.products); err != nil {
		return plan, fmt.Errorf("%w: products: %v", ErrMalformedBackup, err)
	}

	if raw, ok := doc["expenses"]; ok && !isNull(raw) {
		if !isArray(raw) {
			return plan, fmt.Errorf("%w: expenses must be an array", ErrMalformedBackup)
		}
		if err := json.Unmarshal(raw, &plan.expenses); err != nil {
			return plan, fmt.Errorf("%w: expenses: %v", ErrMalformedBackup, err)
		}
		if plan.expenses == nil {
			plan.expenses = []models.Expense{}
		}
	}

	if raw, ok := doc["theme"]; ok && !isNull(raw) {
		var theme models.Theme
		if err := json.Unmarshal(raw, &theme); err != nil {
			return plan, fmt.Errorf("%w: theme: %v", ErrMalformedBackup, err)
		}
		plan.theme = &theme
	}

	if raw, ok := doc["currency"]; ok && !isNull(raw) {
		var currency string
		if err := json.Unmarshal(raw, &currency); err != nil {
			return plan, fmt.Errorf("%w: currency: %v", ErrMalformedBackup, err)
		}
		plan.currency = &currency
	}
	return plan, nil
}

// Restore overwrites the stored documents with a backup and reloads the
// ledger. Orders and products are required; expenses, theme and currency
// are left untouched when absent. A malformed backup writes nothing.
func (l *Ledger) Restore(ctx context.Context, payload []byte) (err error) {
	defer func() { l.metrics.ObserveBackup("restore", err) }()
	plan, err := parseBackup(payload)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	orders := plan.orders
	if orders == nil {
		orders = []models.Order{}
	}
	products := plan.products
	if products == nil {
		products = []models.Product{}
	}
	if err := l.writeDoc(ctx, store.KeyOrders, orders); err != nil {
		return err
	}
	if err := l.writeDoc(ctx, store.KeyProducts, products); err != nil {
		return err
	}
	if plan.expenses != nil {
		if err := l.writeDoc(ctx, store.KeyExpenses, plan.expenses); err != nil {
			return err
		}
	}
	if plan.theme != nil {
		if err := l.writeDoc(ctx, store.KeyTheme, *plan.theme); err != nil {
			return err
		}
	}
	if plan.currency != nil {
		if err := l.writeDoc(ctx, store.KeyCurrency, *plan.currency); err != nil {
			return err
		}
	}
	if err := l.loadLocked(ctx); err != nil {
		return fmt.Errorf("reload after restore: %w", err)
	}
	l.log.Info("backup restored",
		zap.Int("orders", len(l.orders)),
		zap.Int("products", len(l.products)),
	)
	return nil
}
