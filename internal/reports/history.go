package reports

import (
	"sort"

	"RentalLedger/internal/models"
)

type ProductCount struct {
	Product string
	Count   int
}

// FilterHistory returns the completed orders whose end-date month passes the
// filter, latest end first. Open-ended orders sort last.
func FilterHistory(orders []models.Order, filter MonthFilter) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status != models.OrderCompleted || !filter.Matches(o) {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].EndDate, out[j].EndDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.After(*b)
	})
	return out
}

// HistoryCounts counts orders per product, most rented first.
func HistoryCounts(orders []models.Order) []ProductCount {
	counts := map[string]int{}
	for _, o := range orders {
		counts[o.ProductName]++
	}
	out := make([]ProductCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, ProductCount{Product: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Product < out[j].Product
	})
	return out
}
