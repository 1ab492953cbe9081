package http

import (
	"net/http"
	"strconv"
	"time"

	"RentalLedger/internal/calendar"
	"RentalLedger/internal/models"
	"RentalLedger/internal/pricing"
	"RentalLedger/internal/render"
	"RentalLedger/internal/reports"
	"RentalLedger/internal/services"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d := h.Ledger.Dashboard(h.Clock.Now())
	writeJSON(w, http.StatusOK, dashboardResponse{
		Orders:          newOrderViews(d.Orders),
		ExpectedRevenue: amount(d.ExpectedRevenue),
	})
}

func monthParam(r *http.Request, name string) (reports.MonthFilter, error) {
	return reports.ParseMonthFilter(r.URL.Query().Get(name))
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	filter, err := monthParam(r, "month")
	if err != nil {
		h.fail(w, r, "history", err)
		return
	}
	writeJSON(w, http.StatusOK, newHistory(filter, h.Ledger.History(filter)))
}

// Summary serves the four earnings reports, each with its own month filter.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	var f reports.Filters
	for _, p := range []struct {
		name string
		dst  *reports.MonthFilter
	}{
		{"revenue", &f.Revenue},
		{"monthly", &f.Monthly},
		{"product", &f.Product},
		{"duration", &f.Duration},
	} {
		filter, err := monthParam(r, p.name)
		if err != nil {
			h.fail(w, r, "summary", err)
			return
		}
		*p.dst = filter
	}
	writeJSON(w, http.StatusOK, newSummary(h.Ledger.Summary(f)))
}

func (h *Handler) Earnings(w http.ResponseWriter, r *http.Request) {
	filter, err := monthParam(r, "month")
	if err != nil {
		h.fail(w, r, "earnings", err)
		return
	}
	writeJSON(w, http.StatusOK, newEarnings(h.Ledger.Earnings(filter)))
}

func (h *Handler) EarningsHTML(w http.ResponseWriter, r *http.Request) {
	filter, err := monthParam(r, "month")
	if err != nil {
		h.fail(w, r, "earnings report", err)
		return
	}
	html, err := h.Renderer.RenderEarnings(renderEarningsInput(h.Ledger, filter))
	if err != nil {
		h.fail(w, r, "earnings report", err)
		return
	}
	writeHTML(w, html)
}

func (h *Handler) ExpenseSummary(w http.ResponseWriter, r *http.Request) {
	filter, err := monthParam(r, "month")
	if err != nil {
		h.fail(w, r, "expense summary", err)
		return
	}
	writeJSON(w, http.StatusOK, newExpenseSummary(h.Ledger.ExpenseSummary(filter)))
}

func (h *Handler) calendarIndex(r *http.Request) (*calendar.Index, error) {
	policy := h.CalendarPolicy
	if v := r.URL.Query().Get("open_ended"); v != "" {
		p, err := calendar.ParseOpenEndedPolicy(v)
		if err != nil {
			return nil, err
		}
		policy = p
	}
	return h.Ledger.Calendar(policy), nil
}

func (h *Handler) CalendarMonth(w http.ResponseWriter, r *http.Request) {
	year, yerr := strconv.Atoi(chi.URLParam(r, "year"))
	month, merr := strconv.Atoi(chi.URLParam(r, "month"))
	if yerr != nil || merr != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid year or month")
		return
	}
	ix, err := h.calendarIndex(r)
	if err != nil {
		h.fail(w, r, "calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, newMonthView(ix.Month(year, time.Month(month))))
}

func (h *Handler) CalendarDay(w http.ResponseWriter, r *http.Request) {
	day, err := time.ParseInLocation("2006-01-02", chi.URLParam(r, "date"), models.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	ix, err := h.calendarIndex(r)
	if err != nil {
		h.fail(w, r, "calendar", err)
		return
	}
	covering := ix.Coverage(day)
	table := h.Ledger.RateTable()
	views := make([]services.OrderView, 0, len(covering))
	for _, o := range covering {
		views = append(views, services.OrderView{Order: o, Quote: pricing.Cost(o, table)})
	}
	writeJSON(w, http.StatusOK, dayCoverageResponse{
		Date:   day.Format("2006-01-02"),
		Status: calendar.StatusOf(covering),
		Orders: newOrderViews(views),
	})
}

func renderEarningsInput(l *services.Ledger, filter reports.MonthFilter) render.EarningsInput {
	return render.EarningsInput{Earnings: l.Earnings(filter), Currency: l.Settings().Currency}
}
