package pricing

import (
	"math"
	"testing"
	"time"

	"RentalLedger/internal/models"
)

var day1 = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

func orderBetween(product string, start, end time.Time) models.Order {
	return models.Order{ID: "o1", Status: models.OrderActive, ProductName: product, StartDate: start, EndDate: &end}
}

func defaultTable() RateTable {
	return NewRateTable([]models.Product{{Name: "Car", Rate: 2000}, {Name: "Bike", Rate: 500}})
}

func TestCost_BillingUnits(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		end    time.Time
		units  int64
		amount float64
	}{
		{name: "exactly one unit", end: day1.Add(12 * time.Hour), units: 1, amount: 2000},
		{name: "one second over", end: day1.Add(12*time.Hour + time.Second), units: 2, amount: 4000},
		{name: "zero duration", end: day1, units: 0, amount: 0},
		{name: "three days", end: day1.Add(72 * time.Hour), units: 6, amount: 12000},
		{name: "reversed dates", end: day1.Add(-13 * time.Hour), units: 2, amount: 4000},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			q := Cost(orderBetween("Car", day1, tc.end), defaultTable())
			if q.Units != tc.units {
				t.Fatalf("units = %d, want %d", q.Units, tc.units)
			}
			if q.Amount != tc.amount {
				t.Fatalf("amount = %v, want %v", q.Amount, tc.amount)
			}
			if !q.RateResolved || q.Rate != 2000 {
				t.Fatalf("rate = %v resolved=%v", q.Rate, q.RateResolved)
			}
		})
	}
}

func TestCost_ManualOverride(t *testing.T) {
	t.Parallel()

	o := orderBetween("Car", day1, day1.Add(12*time.Hour+time.Second))
	o.ManualCost = "1500"
	q := Cost(o, defaultTable())
	if !q.Manual || q.Amount != 1500 {
		t.Fatalf("expected manual 1500, got %+v", q)
	}
	if q.Units != 2 {
		t.Fatalf("units still reported, got %d", q.Units)
	}

	o.ManualCost = "abc"
	q = Cost(o, defaultTable())
	if !math.IsNaN(q.Amount) {
		t.Fatalf("unparseable override should yield NaN, got %v", q.Amount)
	}
	if got := Total([]Quote{q, {Amount: 10}}); !math.IsNaN(got) {
		t.Fatalf("NaN should propagate into totals, got %v", got)
	}
}

func TestCost_OpenEnded(t *testing.T) {
	t.Parallel()

	o := models.Order{ProductName: "Car", StartDate: day1}
	q := Cost(o, defaultTable())
	if !q.OpenEnded || q.Amount != 0 || q.Units != 0 {
		t.Fatalf("open-ended order should cost 0, got %+v", q)
	}

	o.ManualCost = "750"
	if q = Cost(o, defaultTable()); q.Amount != 750 {
		t.Fatalf("manual cost applies to open-ended orders, got %v", q.Amount)
	}
}

func TestCost_OrphanedProductUsesZeroRate(t *testing.T) {
	t.Parallel()

	q := Cost(orderBetween("Boat", day1, day1.Add(24*time.Hour)), defaultTable())
	if q.RateResolved {
		t.Fatal("Boat should not resolve")
	}
	if q.Rate != ZeroRateFallback || q.Amount != 0 || q.Units != 2 {
		t.Fatalf("unexpected quote %+v", q)
	}
}

func TestNewRateTable_FirstEntryWins(t *testing.T) {
	t.Parallel()

	table := NewRateTable([]models.Product{{Name: "Car", Rate: 1}, {Name: "Car", Rate: 2}})
	if rate, ok := table.Resolve("Car"); !ok || rate != 1 {
		t.Fatalf("Resolve(Car) = %v, %v", rate, ok)
	}
}

func TestBreakdown(t *testing.T) {
	t.Parallel()

	b := NewBreakdown(49*time.Hour + 59*time.Minute)
	if b.TotalHours != 49 || b.Days != 2 || b.Hours != 1 {
		t.Fatalf("unexpected breakdown %+v", b)
	}
	if got := b.String(); got != "2 Day(s), 1 Hour(s)" {
		t.Fatalf("String() = %q", got)
	}
	if got := b.Short(); got != "2d 1h" {
		t.Fatalf("Short() = %q", got)
	}
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	cases := map[string]float64{
		"1500":      1500,
		"  1500.50": 1500.5,
		"12.5kg":    12.5,
		".5":        0.5,
		"-3":        -3,
		"1e3":       1000,
		"2e":        2,
		"7.":        7,
		"Infinity":  math.Inf(1),
	}
	for in, want := range cases {
		if got := ParseAmount(in); got != want {
			t.Errorf("ParseAmount(%q) = %v, want %v", in, got, want)
		}
	}
	for _, in := range []string{"", "abc", ".", "-", "e5", "$100"} {
		if got := ParseAmount(in); !math.IsNaN(got) {
			t.Errorf("ParseAmount(%q) = %v, want NaN", in, got)
		}
	}
}

func TestNormalizeAmount(t *testing.T) {
	t.Parallel()

	v, s, err := NormalizeAmount("1500.50")
	if err != nil || v != 1500.5 || s != "1500.5" {
		t.Fatalf("NormalizeAmount = %v, %q, %v", v, s, err)
	}
	if _, _, err := NormalizeAmount("free"); err != ErrNotANumber {
		t.Fatalf("expected ErrNotANumber, got %v", err)
	}
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	cases := map[float64]string{
		2000:         "2000",
		1500.5:       "1500.5",
		0.25:         "0.25",
		-42:          "-42",
		math.Inf(1):  "Infinity",
		math.Inf(-1): "-Infinity",
	}
	for in, want := range cases {
		if got := FormatAmount(in); got != want {
			t.Errorf("FormatAmount(%v) = %q, want %q", in, got, want)
		}
	}
	if got := FormatAmount(math.NaN()); got != "NaN" {
		t.Errorf("FormatAmount(NaN) = %q", got)
	}
}

func TestParseNumber(t *testing.T) {
	t.Parallel()

	if v, err := ParseNumber(" 2000 "); err != nil || v != 2000 {
		t.Fatalf("ParseNumber = %v, %v", v, err)
	}
	if v, err := ParseNumber("-Infinity"); err != nil || !math.IsInf(v, -1) {
		t.Fatalf("ParseNumber(-Infinity) = %v, %v", v, err)
	}
	for _, in := range []string{"", "12abc", "abc", "0x10", "1,000"} {
		if _, err := ParseNumber(in); err != ErrNotANumber {
			t.Errorf("ParseNumber(%q) err = %v", in, err)
		}
	}
}
