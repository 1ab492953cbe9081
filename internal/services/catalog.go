package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"RentalLedger/internal/models"
	"RentalLedger/internal/pricing"
	"RentalLedger/internal/store"

	"go.uber.org/zap"
)

func parseRate(v string) (float64, error) {
	rate, err := pricing.ParseNumber(v)
	if err != nil || math.IsInf(rate, 0) || rate <= 0 {
		return 0, fmt.Errorf("%w: rate %q", ErrInvalidInput, v)
	}
	return rate, nil
}

// AddProduct appends a product to the catalogue. The name must be new and
// the rate a positive number.
func (l *Ledger) AddProduct(ctx context.Context, name, rate string) (product models.Product, err error) {
	defer func() { l.observe("add_product", err) }()
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Product{}, fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	r, err := parseRate(rate)
	if err != nil {
		return models.Product{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.products {
		if p.Name == name {
			return models.Product{}, fmt.Errorf("%w: product %q already exists", ErrInvalidInput, name)
		}
	}
	product = models.Product{Name: name, Rate: r}
	if err := l.saveProducts(ctx, append(cloneProducts(l.products), product)); err != nil {
		return models.Product{}, err
	}
	l.log.Info("product added", zap.String("product", name), zap.Float64("rate", r))
	return product, nil
}

// UpdateProductRate changes the rate of an existing product. Orders are
// priced at the current rate, so this reprices every order of the product.
func (l *Ledger) UpdateProductRate(ctx context.Context, name, rate string) (product models.Product, err error) {
	defer func() { l.observe("update_product", err) }()
	r, err := parseRate(rate)
	if err != nil {
		return models.Product{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := cloneProducts(l.products)
	for i := range next {
		if next[i].Name == name {
			next[i].Rate = r
			if err := l.saveProducts(ctx, next); err != nil {
				return models.Product{}, err
			}
			return next[i], nil
		}
	}
	return models.Product{}, fmt.Errorf("%w: product %s", ErrNotFound, name)
}

// DeleteProduct removes a product. Orders that reference it keep their
// product name and resolve to the zero-rate fallback.
func (l *Ledger) DeleteProduct(ctx context.Context, name string) (err error) {
	defer func() { l.observe("delete_product", err) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, p := range l.products {
		if p.Name != name {
			continue
		}
		next := make([]models.Product, 0, len(l.products)-1)
		next = append(next, l.products[:i]...)
		next = append(next, l.products[i+1:]...)
		if err := l.saveProducts(ctx, next); err != nil {
			return err
		}
		l.log.Info("product deleted", zap.String("product", name))
		return nil
	}
	return fmt.Errorf("%w: product %s", ErrNotFound, name)
}

type ExpenseInput struct {
	Purpose string
	Amount  string
	// Date defaults to now on add and to the stored date on update.
	Date time.Time
}

func (in ExpenseInput) amount() (float64, error) {
	v, err := pricing.ParseNumber(in.Amount)
	if err != nil || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: amount %q", ErrInvalidInput, in.Amount)
	}
	return v, nil
}

func (l *Ledger) AddExpense(ctx context.Context, in ExpenseInput) (expense models.Expense, err error) {
	defer func() { l.observe("add_expense", err) }()
	amount, err := in.amount()
	if err != nil {
		return models.Expense{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	date := in.Date
	if date.IsZero() {
		date = l.clock.Now().UTC()
	}
	expense = models.Expense{Purpose: in.Purpose, Amount: amount, Date: date}
	next := append(append([]models.Expense(nil), l.expenses...), expense)
	if err := l.saveExpenses(ctx, next); err != nil {
		return models.Expense{}, err
	}
	return expense, nil
}

// UpdateExpense replaces the expense at index.
func (l *Ledger) UpdateExpense(ctx context.Context, index int, in ExpenseInput) (expense models.Expense, err error) {
	defer func() { l.observe("update_expense", err) }()
	amount, err := in.amount()
	if err != nil {
		return models.Expense{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.expenses) {
		return models.Expense{}, fmt.Errorf("%w: expense %d", ErrNotFound, index)
	}
	next := append([]models.Expense(nil), l.expenses...)
	next[index].Purpose = in.Purpose
	next[index].Amount = amount
	if !in.Date.IsZero() {
		next[index].Date = in.Date
	}
	if err := l.saveExpenses(ctx, next); err != nil {
		return models.Expense{}, err
	}
	return next[index], nil
}

func (l *Ledger) DeleteExpense(ctx context.Context, index int) (err error) {
	defer func() { l.observe("delete_expense", err) }()
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.expenses) {
		return fmt.Errorf("%w: expense %d", ErrNotFound, index)
	}
	next := make([]models.Expense, 0, len(l.expenses)-1)
	next = append(next, l.expenses[:index]...)
	next = append(next, l.expenses[index+1:]...)
	return l.saveExpenses(ctx, next)
}

type Settings struct {
	Theme    models.Theme
	Currency models.Currency
}

func (l *Ledger) Settings() Settings {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, _ := models.LookupCurrency(l.currency)
	return Settings{Theme: l.theme, Currency: c}
}

func (l *Ledger) SetTheme(ctx context.Context, theme models.Theme) (err error) {
	defer func() { l.observe("set_theme", err) }()
	if !theme.Valid() {
		return fmt.Errorf("%w: theme %q", ErrInvalidInput, theme)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.writeDoc(ctx, store.KeyTheme, theme); err != nil {
		return err
	}
	l.theme = theme
	return nil
}

// SetCurrency switches the display currency. Amounts are not converted.
func (l *Ledger) SetCurrency(ctx context.Context, code string) (currency models.Currency, err error) {
	defer func() { l.observe("set_currency", err) }()
	c, ok := models.LookupCurrency(strings.ToUpper(strings.TrimSpace(code)))
	if !ok {
		return models.Currency{}, fmt.Errorf("%w: currency %q", ErrInvalidInput, code)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.writeDoc(ctx, store.KeyCurrency, c.Code); err != nil {
		return models.Currency{}, err
	}
	l.currency = c.Code
	return c, nil
}
