package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"RentalLedger/internal/clock"
	"RentalLedger/internal/metrics"
	"RentalLedger/internal/models"
	"RentalLedger/internal/pricing"
	"RentalLedger/internal/store"

	"go.uber.org/zap"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrMalformedBackup = errors.New("malformed backup")
)

// DefaultProducts seed the catalogue when no products document exists.
var DefaultProducts = []models.Product{
	{Name: "Car", Rate: 2000},
	{Name: "Bike", Rate: 500},
	{Name: "Camera", Rate: 800},
}

type Options struct {
	Clock   clock.Clock
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	// AutoCompleteExpired moves active orders past their end date to
	// completed on every Load.
	AutoCompleteExpired bool
}

// Ledger owns the in-memory collections and persists each one as a whole
// document after every mutation. All methods are serialised by one mutex.
type Ledger struct {
	docs         store.Documents
	clock        clock.Clock
	log          *zap.Logger
	metrics      *metrics.Metrics
	autoComplete bool

	mu         sync.Mutex
	orders     []models.Order
	products   []models.Product
	expenses   []models.Expense
	alerted    []string
	alertedSet map[string]struct{}
	theme      models.Theme
	currency   string
}

func NewLedger(docs store.Documents, opts Options) *Ledger {
	if opts.Clock == nil {
		opts.Clock = clock.NewSystem()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Ledger{
		docs:         docs,
		clock:        opts.Clock,
		log:          opts.Logger.Named("ledger"),
		metrics:      opts.Metrics,
		autoComplete: opts.AutoCompleteExpired,
		products:     cloneProducts(DefaultProducts),
		alertedSet:   map[string]struct{}{},
		theme:        models.ThemeLight,
		currency:     models.DefaultCurrency,
	}
}

// Load replaces the in-memory state with the stored documents.
func (l *Ledger) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadLocked(ctx)
}

func (l *Ledger) loadLocked(ctx context.Context) error {
	var orders []models.Order
	if _, err := l.readDoc(ctx, store.KeyOrders, &orders); err != nil {
		return err
	}

	var products []models.Product
	ok, err := l.readDoc(ctx, store.KeyProducts, &products)
	if err != nil {
		return err
	}
	if !ok || products == nil {
		products = cloneProducts(DefaultProducts)
	}

	var expenses []models.Expense
	if _, err := l.readDoc(ctx, store.KeyExpenses, &expenses); err != nil {
		return err
	}

	var alerted []string
	if _, err := l.readDoc(ctx, store.KeyAlerted, &alerted); err != nil {
		return err
	}

	var theme models.Theme
	if _, err := l.readDoc(ctx, store.KeyTheme, &theme); err != nil {
		return err
	}
	if !theme.Valid() {
		theme = models.ThemeLight
	}

	var currency string
	if _, err := l.readDoc(ctx, store.KeyCurrency, &currency); err != nil {
		return err
	}
	if _, known := models.LookupCurrency(currency); !known {
		currency = models.DefaultCurrency
	}

	l.orders = orders
	l.products = products
	l.expenses = expenses
	l.alerted = alerted
	l.alertedSet = make(map[string]struct{}, len(alerted))
	for _, id := range alerted {
		l.alertedSet[id] = struct{}{}
	}
	l.theme = theme
	l.currency = currency

	if l.autoComplete {
		if err := l.completeExpiredLocked(ctx); err != nil {
			return err
		}
	}
	l.refreshGauges()
	l.log.Debug("ledger loaded",
		zap.Int("orders", len(l.orders)),
		zap.Int("products", len(l.products)),
		zap.Int("expenses", len(l.expenses)),
	)
	return nil
}

func (l *Ledger) completeExpiredLocked(ctx context.Context) error {
	now := l.clock.Now()
	next := cloneOrders(l.orders)
	var expired []string
	for i := range next {
		o := &next[i]
		if o.Status == models.OrderCompleted || o.EndDate == nil {
			continue
		}
		if o.EndDate.Before(now) {
			o.Status = models.OrderCompleted
			expired = append(expired, o.ID)
		}
	}
	if len(expired) == 0 {
		return nil
	}
	if err := l.writeDoc(ctx, store.KeyOrders, next); err != nil {
		return err
	}
	l.orders = next
	l.log.Info("expired orders completed", zap.Strings("order_ids", expired))
	return nil
}

func (l *Ledger) readDoc(ctx context.Context, key string, v any) (bool, error) {
	payload, ok, err := l.docs.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || len(payload) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (l *Ledger) writeDoc(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := l.docs.Put(ctx, key, payload); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// saveOrders persists next and only then makes it the current collection.
func (l *Ledger) saveOrders(ctx context.Context, next []models.Order) error {
	if next == nil {
		next = []models.Order{}
	}
	if err := l.writeDoc(ctx, store.KeyOrders, next); err != nil {
		return err
	}
	l.orders = next
	l.refreshGauges()
	return nil
}

func (l *Ledger) saveProducts(ctx context.Context, next []models.Product) error {
	if next == nil {
		next = []models.Product{}
	}
	if err := l.writeDoc(ctx, store.KeyProducts, next); err != nil {
		return err
	}
	l.products = next
	return nil
}

func (l *Ledger) saveExpenses(ctx context.Context, next []models.Expense) error {
	if next == nil {
		next = []models.Expense{}
	}
	if err := l.writeDoc(ctx, store.KeyExpenses, next); err != nil {
		return err
	}
	l.expenses = next
	return nil
}

func (l *Ledger) refreshGauges() {
	var active, completed int
	for _, o := range l.orders {
		if o.Status == models.OrderCompleted {
			completed++
		} else {
			active++
		}
	}
	l.metrics.SetOrders(string(models.OrderActive), active)
	l.metrics.SetOrders(string(models.OrderCompleted), completed)
}

func (l *Ledger) observe(operation string, err error) {
	l.metrics.ObserveOperation(operation, err)
	if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrInvalidInput) {
		l.log.Error("operation failed", zap.String("operation", operation), zap.Error(err))
	}
}

// Orders returns a copy of every stored order.
func (l *Ledger) Orders() []models.Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneOrders(l.orders)
}

func (l *Ledger) Order(id string) (models.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(id)
	if i < 0 {
		return models.Order{}, fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	return l.orders[i], nil
}

func (l *Ledger) Products() []models.Product {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneProducts(l.products)
}

func (l *Ledger) RateTable() pricing.RateTable {
	l.mu.Lock()
	defer l.mu.Unlock()
	return pricing.NewRateTable(l.products)
}

func (l *Ledger) Expenses() []models.Expense {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Expense(nil), l.expenses...)
}

// Alerted returns the ids that have already been reminded about.
func (l *Ledger) Alerted() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.alerted...)
}

func (l *Ledger) indexOf(id string) int {
	for i := range l.orders {
		if l.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneOrders(in []models.Order) []models.Order {
	if in == nil {
		return nil
	}
	out := make([]models.Order, len(in))
	copy(out, in)
	return out
}

func cloneProducts(in []models.Product) []models.Product {
	if in == nil {
		return nil
	}
	out := make([]models.Product, len(in))
	copy(out, in)
	return out
}
