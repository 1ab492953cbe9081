package reports

import "RentalLedger/internal/models"

type ExpenseSummary struct {
	Total   float64
	Monthly []MonthTotal
	Count   int
}

// Expenses totals expenses dated in the filter's month. Undated expenses
// only count toward "all" and are never grouped by month.
func Expenses(expenses []models.Expense, filter MonthFilter) ExpenseSummary {
	var s ExpenseSummary
	monthly := map[MonthKey]float64{}
	for _, e := range expenses {
		if !filter.matchesTime(e.Date) {
			continue
		}
		s.Total += e.Amount
		s.Count++
		if !e.Date.IsZero() {
			monthly[MonthOf(e.Date)] += e.Amount
		}
	}
	s.Monthly = sortMonthTotals(monthly)
	return s
}
