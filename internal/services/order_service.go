package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"RentalLedger/internal/models"
	"RentalLedger/internal/pricing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderInput carries the order form. On edit, empty ProofData and
// AltProofData keep the stored attachments and an empty Status keeps the
// current one.
type OrderInput struct {
	ProductName  string
	UserName     string
	Location     string
	Phone1       string
	Phone2       string
	Phone3       string
	StartDate    time.Time
	EndDate      *time.Time
	ProofName    string
	ProofData    string
	AltProofName string
	AltProofData string
	Extra        string
	ManualCost   string
	Status       models.OrderStatus
}

func (in OrderInput) validate() error {
	required := []struct{ field, value string }{
		{"productName", in.ProductName},
		{"userName", in.UserName},
		{"location", in.Location},
		{"phone1", in.Phone1},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, r.field)
		}
	}
	if in.StartDate.IsZero() {
		return fmt.Errorf("%w: startDate is required", ErrInvalidInput)
	}
	switch in.Status {
	case "", models.OrderActive, models.OrderCompleted:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, in.Status)
	}
	return nil
}

func (l *Ledger) CreateOrder(ctx context.Context, in OrderInput) (order models.Order, err error) {
	defer func() { l.observe("create_order", err) }()
	if err := in.validate(); err != nil {
		return models.Order{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	order = models.Order{
		ID:           uuid.NewString(),
		Status:       models.OrderActive,
		ProductName:  in.ProductName,
		UserName:     in.UserName,
		Location:     in.Location,
		Phone1:       in.Phone1,
		Phone2:       in.Phone2,
		Phone3:       in.Phone3,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		ProofName:    in.ProofName,
		ProofData:    in.ProofData,
		AltProofName: in.AltProofName,
		AltProofData: in.AltProofData,
		Extra:        in.Extra,
		ManualCost:   in.ManualCost,
		CreatedAt:    l.clock.Now().UTC(),
	}
	next := append(cloneOrders(l.orders), order)
	if err := l.saveOrders(ctx, next); err != nil {
		return models.Order{}, err
	}
	l.log.Info("order created", zap.String("order_id", order.ID), zap.String("product", order.ProductName))
	return order, nil
}

// EditOrder replaces the form fields of an order. ID and CreatedAt never
// change.
func (l *Ledger) EditOrder(ctx context.Context, id string, in OrderInput) (order models.Order, err error) {
	defer func() { l.observe("edit_order", err) }()
	if err := in.validate(); err != nil {
		return models.Order{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return models.Order{}, fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	next := cloneOrders(l.orders)
	o := &next[i]
	o.ProductName = in.ProductName
	o.UserName = in.UserName
	o.Location = in.Location
	o.Phone1 = in.Phone1
	o.Phone2 = in.Phone2
	o.Phone3 = in.Phone3
	o.StartDate = in.StartDate
	o.EndDate = in.EndDate
	o.ProofName = in.ProofName
	o.AltProofName = in.AltProofName
	o.Extra = in.Extra
	o.ManualCost = in.ManualCost
	if in.ProofData != "" {
		o.ProofData = in.ProofData
	}
	if in.AltProofData != "" {
		o.AltProofData = in.AltProofData
	}
	if in.Status != "" {
		o.Status = in.Status
	}
	if err := l.saveOrders(ctx, next); err != nil {
		return models.Order{}, err
	}
	return next[i], nil
}

// CompleteOrder marks an order completed. Completing a completed order is a
// no-op.
func (l *Ledger) CompleteOrder(ctx context.Context, id string) (models.Order, error) {
	return l.setStatus(ctx, "complete_order", id, models.OrderCompleted)
}

// RestoreOrder moves a completed order back to active.
func (l *Ledger) RestoreOrder(ctx context.Context, id string) (models.Order, error) {
	return l.setStatus(ctx, "restore_order", id, models.OrderActive)
}

func (l *Ledger) setStatus(ctx context.Context, operation, id string, status models.OrderStatus) (order models.Order, err error) {
	defer func() { l.observe(operation, err) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return models.Order{}, fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	if l.orders[i].Status == status {
		return l.orders[i], nil
	}
	next := cloneOrders(l.orders)
	next[i].Status = status
	if err := l.saveOrders(ctx, next); err != nil {
		return models.Order{}, err
	}
	l.log.Info("order status changed", zap.String("order_id", id), zap.String("status", string(status)))
	return next[i], nil
}

// DeleteOrder removes an order. Unknown ids are ignored; the id stays in the
// alerted set if it was ever reminded about.
func (l *Ledger) DeleteOrder(ctx context.Context, id string) (err error) {
	defer func() { l.observe("delete_order", err) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return nil
	}
	next := make([]models.Order, 0, len(l.orders)-1)
	next = append(next, l.orders[:i]...)
	next = append(next, l.orders[i+1:]...)
	if err := l.saveOrders(ctx, next); err != nil {
		return err
	}
	l.log.Info("order deleted", zap.String("order_id", id))
	return nil
}

// QuickEditPrice sets the manual cost override from user input, or clears
// it when value is blank. The stored override is the parsed number in its
// canonical form.
func (l *Ledger) QuickEditPrice(ctx context.Context, id, value string) (order models.Order, err error) {
	defer func() { l.observe("quick_edit_price", err) }()

	manual := ""
	if strings.TrimSpace(value) != "" {
		_, formatted, perr := pricing.NormalizeAmount(value)
		if perr != nil {
			return models.Order{}, fmt.Errorf("%w: price %q", ErrInvalidInput, value)
		}
		manual = formatted
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return models.Order{}, fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	next := cloneOrders(l.orders)
	next[i].ManualCost = manual
	if err := l.saveOrders(ctx, next); err != nil {
		return models.Order{}, err
	}
	return next[i], nil
}
