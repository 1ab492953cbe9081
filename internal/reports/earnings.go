package reports

import (
	"sort"
	"time"

	"RentalLedger/internal/models"
	"RentalLedger/internal/pricing"
)

type MonthProducts struct {
	Month    MonthKey
	Products []ProductTotal
}

// Earnings is the content of the exported earnings report: one filter
// applied to the whole completed-order set.
type Earnings struct {
	Filter          MonthFilter
	GeneratedAt     time.Time
	Orders          []models.Order
	Revenue         float64
	Monthly         []MonthTotal
	ProductsByMonth []MonthProducts
	Durations       []ProductDuration
	Expenses        ExpenseSummary
	Net             float64
}

func (e Earnings) Empty() bool { return len(e.Orders) == 0 }

// BuildEarnings prepares the earnings report for the completed orders whose
// end-date month passes filter.
func BuildEarnings(orders []models.Order, table pricing.RateTable, expenses []models.Expense, filter MonthFilter, now time.Time) Earnings {
	selected := FilterHistory(orders, filter)
	all := Filters{Revenue: AllMonths, Monthly: AllMonths, Product: AllMonths, Duration: AllMonths}
	summary := Build(selected, table, all)

	byMonth := map[MonthKey]map[string]float64{}
	for _, o := range selected {
		if o.EndDate == nil {
			continue
		}
		k := MonthOf(*o.EndDate)
		if byMonth[k] == nil {
			byMonth[k] = map[string]float64{}
		}
		byMonth[k][o.ProductName] += pricing.Cost(o, table).Amount
	}
	productsByMonth := make([]MonthProducts, 0, len(byMonth))
	for k, products := range byMonth {
		productsByMonth = append(productsByMonth, MonthProducts{Month: k, Products: sortProductTotals(products)})
	}
	sort.Slice(productsByMonth, func(i, j int) bool {
		return productsByMonth[j].Month.Before(productsByMonth[i].Month)
	})

	spent := Expenses(expenses, filter)
	return Earnings{
		Filter:          filter,
		GeneratedAt:     now,
		Orders:          selected,
		Revenue:         summary.TotalRevenue,
		Monthly:         summary.Monthly,
		ProductsByMonth: productsByMonth,
		Durations:       summary.Durations,
		Expenses:        spent,
		Net:             summary.TotalRevenue - spent.Total,
	}
}
