package reports

import (
	"math"
	"testing"
	"time"

	"RentalLedger/internal/models"
	"RentalLedger/internal/pricing"
)

var rates = pricing.NewRateTable([]models.Product{
	{Name: "Car", Rate: 2000},
	{Name: "Bike", Rate: 500},
	{Name: "Camera", Rate: 800},
})

// completedOrder ends mid-month so the month does not depend on the zone.
func completedOrder(id, product string, year int, month time.Month, units int) models.Order {
	end := time.Date(year, month, 15, 12, 0, 0, 0, time.UTC)
	return models.Order{
		ID:          id,
		Status:      models.OrderCompleted,
		ProductName: product,
		StartDate:   end.Add(-time.Duration(units) * pricing.BillingUnit),
		EndDate:     &end,
	}
}

func march2025() MonthFilter { return ForMonth(MonthKey{Year: 2025, Month: time.March}) }

func scenarioOrders() []models.Order {
	return []models.Order{
		completedOrder("a", "Car", 2025, time.March, 1),    // 2000
		completedOrder("b", "Bike", 2025, time.March, 2),   // 1000
		completedOrder("c", "Camera", 2025, time.April, 1), // 800
		func() models.Order {
			o := completedOrder("d", "Bike", 2025, time.April, 1)
			o.ManualCost = "200"
			return o
		}(),
	}
}

func TestBuild_MonthlyTotals(t *testing.T) {
	t.Parallel()

	all := Build(scenarioOrders(), rates, Filters{})
	if len(all.Monthly) != 2 {
		t.Fatalf("expected 2 months, got %+v", all.Monthly)
	}
	if all.Monthly[0].Month.Label() != "April 2025" || all.Monthly[0].Total != 1000 {
		t.Fatalf("newest month first, got %+v", all.Monthly[0])
	}
	if all.Monthly[1].Month.Label() != "March 2025" || all.Monthly[1].Total != 3000 {
		t.Fatalf("unexpected March total %+v", all.Monthly[1])
	}
	if all.TotalRevenue != 4000 {
		t.Fatalf("revenue = %v", all.TotalRevenue)
	}

	filtered := Build(scenarioOrders(), rates, Filters{Monthly: march2025()})
	if len(filtered.Monthly) != 1 || filtered.Monthly[0].Total != 3000 {
		t.Fatalf("expected only March, got %+v", filtered.Monthly)
	}
}

func TestBuild_FiltersAreIndependent(t *testing.T) {
	t.Parallel()

	base := Build(scenarioOrders(), rates, Filters{})
	narrowed := Build(scenarioOrders(), rates, Filters{Product: march2025(), Duration: march2025()})

	if narrowed.TotalRevenue != base.TotalRevenue {
		t.Fatalf("revenue changed: %v vs %v", narrowed.TotalRevenue, base.TotalRevenue)
	}
	if len(narrowed.Monthly) != len(base.Monthly) {
		t.Fatalf("monthly changed: %+v vs %+v", narrowed.Monthly, base.Monthly)
	}
	for i := range base.Monthly {
		if base.Monthly[i] != narrowed.Monthly[i] {
			t.Fatalf("monthly[%d] changed: %+v vs %+v", i, narrowed.Monthly[i], base.Monthly[i])
		}
	}

	want := []ProductTotal{{Product: "Car", Total: 2000}, {Product: "Bike", Total: 1000}}
	if len(narrowed.Products) != len(want) {
		t.Fatalf("products = %+v", narrowed.Products)
	}
	for i := range want {
		if narrowed.Products[i] != want[i] {
			t.Fatalf("products[%d] = %+v, want %+v", i, narrowed.Products[i], want[i])
		}
	}

	if len(narrowed.Durations) != 2 || narrowed.Durations[0].Product != "Bike" {
		t.Fatalf("durations = %+v", narrowed.Durations)
	}
	if got := narrowed.Durations[0].Breakdown().Short(); got != "1d 0h" {
		t.Fatalf("bike duration = %q", got)
	}
}

func TestBuild_SkipsActiveAndHandlesOpenEnded(t *testing.T) {
	t.Parallel()

	active := completedOrder("x", "Car", 2025, time.March, 4)
	active.Status = models.OrderActive
	openEnded := models.Order{ID: "y", Status: models.OrderCompleted, ProductName: "Car", StartDate: time.Now(), ManualCost: "300"}

	orders := append(scenarioOrders(), active, openEnded)
	all := Build(orders, rates, Filters{})
	if all.TotalRevenue != 4300 {
		t.Fatalf("revenue = %v", all.TotalRevenue)
	}
	for _, m := range all.Monthly {
		if m.Total != 1000 && m.Total != 3000 {
			t.Fatalf("open-ended order leaked into monthly totals: %+v", all.Monthly)
		}
	}

	march := Build(orders, rates, Filters{Revenue: march2025()})
	if march.TotalRevenue != 3000 {
		t.Fatalf("march revenue = %v", march.TotalRevenue)
	}
}

func TestBuild_NaNPropagates(t *testing.T) {
	t.Parallel()

	o := completedOrder("n", "Car", 2025, time.March, 1)
	o.ManualCost = "n/a"
	s := Build(append(scenarioOrders(), o), rates, Filters{})
	if !math.IsNaN(s.TotalRevenue) {
		t.Fatalf("expected NaN revenue, got %v", s.TotalRevenue)
	}
}

func TestParseMonthFilter(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "all", " ALL "} {
		f, err := ParseMonthFilter(in)
		if err != nil || !f.All() {
			t.Fatalf("ParseMonthFilter(%q) = %v, %v", in, f, err)
		}
	}
	f, err := ParseMonthFilter("2025-03")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Label() != "March 2025" || f.String() != "2025-03" {
		t.Fatalf("unexpected filter %q / %q", f.Label(), f.String())
	}
	if _, err := ParseMonthFilter("March"); err == nil {
		t.Fatal("expected error for bad month")
	}
}

func TestFilterHistory(t *testing.T) {
	t.Parallel()

	orders := scenarioOrders()
	active := completedOrder("x", "Car", 2025, time.May, 1)
	active.Status = models.OrderActive
	orders = append(orders, active)

	got := FilterHistory(orders, AllMonths)
	if len(got) != 4 {
		t.Fatalf("expected 4 completed orders, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].EndDate.After(*got[i-1].EndDate) {
			t.Fatalf("history not sorted by end desc at %d", i)
		}
	}

	march := FilterHistory(orders, march2025())
	if len(march) != 2 {
		t.Fatalf("expected 2 March orders, got %d", len(march))
	}

	counts := HistoryCounts(got)
	if counts[0] != (ProductCount{Product: "Bike", Count: 2}) {
		t.Fatalf("counts = %+v", counts)
	}
}

func TestExpenses(t *testing.T) {
	t.Parallel()

	expenses := []models.Expense{
		{Purpose: "fuel", Amount: 300, Date: time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)},
		{Purpose: "repair", Amount: 1200, Date: time.Date(2025, time.April, 10, 12, 0, 0, 0, time.UTC)},
		{Purpose: "misc", Amount: 50},
	}
	all := Expenses(expenses, AllMonths)
	if all.Total != 1550 || all.Count != 3 || len(all.Monthly) != 2 {
		t.Fatalf("unexpected summary %+v", all)
	}
	march := Expenses(expenses, march2025())
	if march.Total != 300 || march.Count != 1 {
		t.Fatalf("unexpected march summary %+v", march)
	}
}

func TestBuildEarnings(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	expenses := []models.Expense{{Purpose: "fuel", Amount: 500, Date: time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)}}

	e := BuildEarnings(scenarioOrders(), rates, expenses, march2025(), now)
	if e.Empty() || len(e.Orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(e.Orders))
	}
	if e.Revenue != 3000 || e.Net != 2500 {
		t.Fatalf("revenue=%v net=%v", e.Revenue, e.Net)
	}
	if len(e.ProductsByMonth) != 1 || len(e.ProductsByMonth[0].Products) != 2 {
		t.Fatalf("products by month = %+v", e.ProductsByMonth)
	}

	none := BuildEarnings(scenarioOrders(), rates, nil, ForMonth(MonthKey{Year: 2024, Month: time.January}), now)
	if !none.Empty() {
		t.Fatal("expected empty report")
	}
}
