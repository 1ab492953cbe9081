package reports

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"RentalLedger/internal/models"
)

var ErrInvalidMonth = errors.New("invalid month filter")

// MonthKey identifies a calendar month. It is the only grouping key used by
// the reports; labels are derived from it at presentation time.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month of t in models.Location.
func MonthOf(t time.Time) MonthKey {
	t = t.In(models.Location)
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// Label renders the key as "March 2025".
func (k MonthKey) Label() string {
	return fmt.Sprintf("%s %d", k.Month, k.Year)
}

// String renders the key as "2025-03", the form accepted by ParseMonthFilter.
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// MonthFilter is either "all" (the zero value) or a single month.
type MonthFilter struct {
	key MonthKey
	set bool
}

var AllMonths = MonthFilter{}

func ForMonth(k MonthKey) MonthFilter {
	return MonthFilter{key: k, set: true}
}

// ParseMonthFilter accepts "", "all" or "YYYY-MM".
func ParseMonthFilter(v string) (MonthFilter, error) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "all") {
		return AllMonths, nil
	}
	t, err := time.Parse("2006-01", v)
	if err != nil {
		return AllMonths, fmt.Errorf("%w: %q", ErrInvalidMonth, v)
	}
	return ForMonth(MonthKey{Year: t.Year(), Month: t.Month()}), nil
}

func (f MonthFilter) All() bool { return !f.set }

// Month returns the selected month; ok is false for the "all" filter.
func (f MonthFilter) Month() (MonthKey, bool) { return f.key, f.set }

func (f MonthFilter) Label() string {
	if !f.set {
		return "all"
	}
	return f.key.Label()
}

func (f MonthFilter) String() string {
	if !f.set {
		return "all"
	}
	return f.key.String()
}

// Matches reports whether an order's end-date month passes the filter.
// Orders without an end date only pass "all".
func (f MonthFilter) Matches(o models.Order) bool {
	if !f.set {
		return true
	}
	if o.EndDate == nil {
		return false
	}
	return MonthOf(*o.EndDate) == f.key
}

func (f MonthFilter) matchesTime(t time.Time) bool {
	if !f.set {
		return true
	}
	if t.IsZero() {
		return false
	}
	return MonthOf(t) == f.key
}
