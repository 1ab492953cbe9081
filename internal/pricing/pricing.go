package pricing

import (
	"math"
	"time"

	"RentalLedger/internal/models"
)

// BillingUnit is the atomic pricing interval.
const BillingUnit = 12 * time.Hour

// ZeroRateFallback is the rate charged for orders whose product is no longer
// in the catalogue.
const ZeroRateFallback = 0.0

type RateTable struct {
	rates map[string]float64
}

// NewRateTable indexes products by name. When a name repeats, the first entry
// wins, matching a front-to-back catalogue lookup.
func NewRateTable(products []models.Product) RateTable {
	rates := make(map[string]float64, len(products))
	for _, p := range products {
		if _, ok := rates[p.Name]; ok {
			continue
		}
		rates[p.Name] = p.Rate
	}
	return RateTable{rates: rates}
}

// Resolve looks up the per-unit rate of a product. The second result is false
// when the product is unknown.
func (t RateTable) Resolve(productName string) (float64, bool) {
	rate, ok := t.rates[productName]
	return rate, ok
}

type Quote struct {
	Amount       float64
	Duration     time.Duration
	Units        int64
	Rate         float64
	RateResolved bool
	Manual       bool
	OpenEnded    bool
}

func (q Quote) Breakdown() Breakdown {
	return NewBreakdown(q.Duration)
}

// Cost prices one order. A non-empty manual cost replaces the computed amount
// outright, even when it does not parse (the amount is then NaN).
func Cost(order models.Order, table RateTable) Quote {
	rate, ok := table.Resolve(order.ProductName)
	if !ok {
		rate = ZeroRateFallback
	}
	q := Quote{Rate: rate, RateResolved: ok}

	if order.EndDate == nil {
		q.OpenEnded = true
	} else {
		q.Duration = AbsDuration(order.StartDate, *order.EndDate)
		q.Units = Units(q.Duration)
		q.Amount = float64(q.Units) * rate
	}

	if order.ManualCost != "" {
		q.Manual = true
		q.Amount = ParseAmount(order.ManualCost)
	}
	return q
}

// AbsDuration is the undirected distance between two instants.
func AbsDuration(a, b time.Time) time.Duration {
	d := b.Sub(a)
	if d < 0 {
		d = -d
	}
	return d
}

// Units rounds a duration up to whole billing units.
func Units(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	n := int64(d / BillingUnit)
	if d%BillingUnit != 0 {
		n++
	}
	return n
}

// Total sums quote amounts. NaN amounts propagate.
func Total(quotes []Quote) float64 {
	var sum float64
	for _, q := range quotes {
		sum += q.Amount
	}
	return sum
}

func IsNumber(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
