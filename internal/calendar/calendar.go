package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"RentalLedger/internal/models"
)

// OpenEndedPolicy decides how orders without an end date appear on the
// calendar.
type OpenEndedPolicy string

const (
	// OpenEndedExclude leaves open-ended orders off the calendar.
	OpenEndedExclude OpenEndedPolicy = "exclude"
	// OpenEndedUntilNow treats an open-ended order as running until now.
	OpenEndedUntilNow OpenEndedPolicy = "until-now"
)

var ErrInvalidPolicy = errors.New("invalid open-ended policy")

func ParseOpenEndedPolicy(v string) (OpenEndedPolicy, error) {
	switch OpenEndedPolicy(strings.ToLower(strings.TrimSpace(v))) {
	case "", OpenEndedExclude:
		return OpenEndedExclude, nil
	case OpenEndedUntilNow:
		return OpenEndedUntilNow, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, v)
}

type DayStatus string

const (
	DayNone      DayStatus = "none"
	DayActive    DayStatus = "active"
	DayCompleted DayStatus = "completed"
)

// Index answers coverage queries over a snapshot of orders.
type Index struct {
	orders []models.Order
	policy OpenEndedPolicy
	now    time.Time
}

func NewIndex(orders []models.Order, policy OpenEndedPolicy, now time.Time) *Index {
	if policy == "" {
		policy = OpenEndedExclude
	}
	return &Index{orders: orders, policy: policy, now: now}
}

// DayBounds returns 00:00:00 and 23:59:59 of the day containing t, in
// models.Location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.In(models.Location)
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, models.Location)
	end := time.Date(y, m, d, 23, 59, 59, 0, models.Location)
	return start, end
}

// interval returns the order's span with reversed dates swapped. ok is false
// when the order has no span under the policy.
func (ix *Index) interval(o models.Order) (time.Time, time.Time, bool) {
	start := o.StartDate
	var end time.Time
	switch {
	case o.EndDate != nil:
		end = *o.EndDate
	case ix.policy == OpenEndedUntilNow:
		end = ix.now
	default:
		return time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		start, end = end, start
	}
	return start, end, true
}

// Coverage returns the orders whose span overlaps the day containing t.
func (ix *Index) Coverage(t time.Time) []models.Order {
	dayStart, dayEnd := DayBounds(t)
	var out []models.Order
	for _, o := range ix.orders {
		start, end, ok := ix.interval(o)
		if !ok {
			continue
		}
		if !start.After(dayEnd) && !end.Before(dayStart) {
			out = append(out, o)
		}
	}
	return out
}

// StatusOf classifies a covering set: completed only when every order in it
// is completed.
func StatusOf(covering []models.Order) DayStatus {
	if len(covering) == 0 {
		return DayNone
	}
	for _, o := range covering {
		if o.Status != models.OrderCompleted {
			return DayActive
		}
	}
	return DayCompleted
}

func (ix *Index) Status(t time.Time) DayStatus {
	return StatusOf(ix.Coverage(t))
}

type Day struct {
	Date   time.Time
	Day    int
	Sunday bool
	Today  bool
	Status DayStatus
	Orders []models.Order
}

type MonthView struct {
	Year  int
	Month time.Month
	// LeadingBlanks is the number of empty cells before day 1 in a
	// Sunday-first grid.
	LeadingBlanks int
	Days          []Day
}

func (v MonthView) Label() string {
	return fmt.Sprintf("%s %d", v.Month, v.Year)
}

// Month summarises every day of the month for the grid.
func (ix *Index) Month(year int, month time.Month) MonthView {
	first := time.Date(year, month, 1, 0, 0, 0, 0, models.Location)
	days := first.AddDate(0, 1, -1).Day()
	todayStart, _ := DayBounds(ix.now)

	view := MonthView{Year: year, Month: month, LeadingBlanks: int(first.Weekday()), Days: make([]Day, 0, days)}
	for d := 1; d <= days; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, models.Location)
		covering := ix.Coverage(date)
		view.Days = append(view.Days, Day{
			Date:   date,
			Day:    d,
			Sunday: date.Weekday() == time.Sunday,
			Today:  !ix.now.IsZero() && date.Equal(todayStart),
			Status: StatusOf(covering),
			Orders: covering,
		})
	}
	return view
}
