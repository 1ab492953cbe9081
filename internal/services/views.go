package services

import (
	"sort"
	"time"

	"RentalLedger/internal/calendar"
	"RentalLedger/internal/models"
	"RentalLedger/internal/pricing"
	"RentalLedger/internal/reports"
)

// EndingSoonWindow flags active orders that end within this window.
const EndingSoonWindow = 24 * time.Hour

// ViewState is derived for display and never stored.
type ViewState struct {
	Expired    bool
	EndingSoon bool
}

// Classify reports whether an active order is past its end date or about to
// reach it. Completed and open-ended orders are neither.
func Classify(o models.Order, now time.Time) ViewState {
	if o.Status == models.OrderCompleted || o.EndDate == nil {
		return ViewState{}
	}
	end := *o.EndDate
	return ViewState{
		Expired:    end.Before(now),
		EndingSoon: end.After(now) && end.Sub(now) < EndingSoonWindow,
	}
}

type OrderView struct {
	Order models.Order
	Quote pricing.Quote
	State ViewState
}

type Dashboard struct {
	Orders          []OrderView
	ExpectedRevenue float64
}

// Dashboard lists the orders that are not completed, soonest end first with
// open-ended orders last, and sums their current cost.
func (l *Ledger) Dashboard(now time.Time) Dashboard {
	l.mu.Lock()
	table := pricing.NewRateTable(l.products)
	orders := cloneOrders(l.orders)
	l.mu.Unlock()

	var d Dashboard
	for _, o := range orders {
		if o.Status == models.OrderCompleted {
			continue
		}
		q := pricing.Cost(o, table)
		d.Orders = append(d.Orders, OrderView{Order: o, Quote: q, State: Classify(o, now)})
		d.ExpectedRevenue += q.Amount
	}
	sort.SliceStable(d.Orders, func(i, j int) bool {
		a, b := d.Orders[i].Order.EndDate, d.Orders[j].Order.EndDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.Before(*b)
	})
	return d
}

// Quote prices one stored order at the current rates.
func (l *Ledger) Quote(id string) (OrderView, error) {
	o, err := l.Order(id)
	if err != nil {
		return OrderView{}, err
	}
	q := pricing.Cost(o, l.RateTable())
	return OrderView{Order: o, Quote: q, State: Classify(o, l.clock.Now())}, nil
}

func (l *Ledger) Summary(f reports.Filters) reports.Summary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return reports.Build(l.orders, pricing.NewRateTable(l.products), f)
}

type History struct {
	Orders []OrderView
	Counts []reports.ProductCount
}

func (l *Ledger) History(filter reports.MonthFilter) History {
	l.mu.Lock()
	table := pricing.NewRateTable(l.products)
	selected := reports.FilterHistory(l.orders, filter)
	l.mu.Unlock()

	h := History{Counts: reports.HistoryCounts(selected)}
	for _, o := range selected {
		h.Orders = append(h.Orders, OrderView{Order: o, Quote: pricing.Cost(o, table)})
	}
	return h
}

func (l *Ledger) Earnings(filter reports.MonthFilter) reports.Earnings {
	l.mu.Lock()
	defer l.mu.Unlock()
	return reports.BuildEarnings(l.orders, pricing.NewRateTable(l.products), l.expenses, filter, l.clock.Now())
}

func (l *Ledger) ExpenseSummary(filter reports.MonthFilter) reports.ExpenseSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return reports.Expenses(l.expenses, filter)
}

// Calendar indexes every order, active and completed, for coverage queries.
func (l *Ledger) Calendar(policy calendar.OpenEndedPolicy) *calendar.Index {
	l.mu.Lock()
	defer l.mu.Unlock()
	return calendar.NewIndex(cloneOrders(l.orders), policy, l.clock.Now())
}
