package reports

import (
	"sort"
	"time"

	"RentalLedger/internal/models"
	"RentalLedger/internal/pricing"
)

// Filters holds one independent month filter per earnings report.
type Filters struct {
	Revenue  MonthFilter
	Monthly  MonthFilter
	Product  MonthFilter
	Duration MonthFilter
}

type MonthTotal struct {
	Month MonthKey
	Total float64
}

type ProductTotal struct {
	Product string
	Total   float64
}

type ProductDuration struct {
	Product  string
	Duration time.Duration
}

func (d ProductDuration) Breakdown() pricing.Breakdown {
	return pricing.NewBreakdown(d.Duration)
}

type Summary struct {
	TotalRevenue float64
	Monthly      []MonthTotal
	Products     []ProductTotal
	Durations    []ProductDuration
}

// Build aggregates completed orders into the four earnings reports. Orders
// that are not completed are ignored.
func Build(orders []models.Order, table pricing.RateTable, f Filters) Summary {
	var summary Summary
	monthly := map[MonthKey]float64{}
	products := map[string]float64{}
	durations := map[string]time.Duration{}

	for _, o := range orders {
		if o.Status != models.OrderCompleted {
			continue
		}
		q := pricing.Cost(o, table)

		if f.Revenue.Matches(o) {
			summary.TotalRevenue += q.Amount
		}
		if f.Monthly.Matches(o) && o.EndDate != nil {
			monthly[MonthOf(*o.EndDate)] += q.Amount
		}
		if f.Product.Matches(o) {
			products[o.ProductName] += q.Amount
		}
		if f.Duration.Matches(o) {
			durations[o.ProductName] += q.Duration
		}
	}

	summary.Monthly = sortMonthTotals(monthly)
	summary.Products = sortProductTotals(products)
	summary.Durations = sortDurations(durations)
	return summary
}

// sortMonthTotals orders months newest first.
func sortMonthTotals(m map[MonthKey]float64) []MonthTotal {
	out := make([]MonthTotal, 0, len(m))
	for k, v := range m {
		out = append(out, MonthTotal{Month: k, Total: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[j].Month.Before(out[i].Month) })
	return out
}

func sortProductTotals(m map[string]float64) []ProductTotal {
	out := make([]ProductTotal, 0, len(m))
	for k, v := range m {
		out = append(out, ProductTotal{Product: k, Total: v})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Product < out[j].Product
	})
	return out
}

func sortDurations(m map[string]time.Duration) []ProductDuration {
	out := make([]ProductDuration, 0, len(m))
	for k, v := range m {
		out = append(out, ProductDuration{Product: k, Duration: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Duration != out[j].Duration {
			return out[i].Duration > out[j].Duration
		}
		return out[i].Product < out[j].Product
	})
	return out
}

// Completed returns the completed orders from a mixed list, in order.
func Completed(orders []models.Order) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == models.OrderCompleted {
			out = append(out, o)
		}
	}
	return out
}
