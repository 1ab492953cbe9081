package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"RentalLedger/internal/calendar"
	"RentalLedger/internal/models"
	"RentalLedger/internal/pricing"
	"RentalLedger/internal/reports"
	"RentalLedger/internal/services"
)

// flexString accepts a JSON string or a bare number, since form values such
// as rates and prices arrive either way.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", data)
		}
		*f = flexString(n.String())
	}
	return nil
}

// amount encodes a money value as a JSON number, or as the string "NaN" or
// "Infinity" when it is not finite.
type amount float64

func (a amount) MarshalJSON() ([]byte, error) {
	v := float64(a)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return json.Marshal(pricing.FormatAmount(v))
	}
	return []byte(pricing.FormatAmount(v)), nil
}

type orderRequest struct {
	ProductName  string     `json:"productName"`
	UserName     string     `json:"userName"`
	Location     string     `json:"location"`
	Phone1       flexString `json:"phone1"`
	Phone2       flexString `json:"phone2"`
	Phone3       flexString `json:"phone3"`
	StartDate    string     `json:"startDate"`
	EndDate      string     `json:"endDate"`
	ProofName    string     `json:"proofName"`
	ProofData    string     `json:"proofData"`
	AltProofName string     `json:"altProofName"`
	AltProofData string     `json:"altProofData"`
	Extra        string     `json:"extra"`
	ManualCost   flexString `json:"manualCost"`
	Status       string     `json:"status"`
}

func (req orderRequest) input() (services.OrderInput, error) {
	in := services.OrderInput{
		ProductName:  strings.TrimSpace(req.ProductName),
		UserName:     strings.TrimSpace(req.UserName),
		Location:     strings.TrimSpace(req.Location),
		Phone1:       strings.TrimSpace(string(req.Phone1)),
		Phone2:       strings.TrimSpace(string(req.Phone2)),
		Phone3:       strings.TrimSpace(string(req.Phone3)),
		ProofName:    req.ProofName,
		ProofData:    req.ProofData,
		AltProofName: req.AltProofName,
		AltProofData: req.AltProofData,
		Extra:        req.Extra,
		ManualCost:   strings.TrimSpace(string(req.ManualCost)),
		Status:       models.OrderStatus(req.Status),
	}
	if strings.TrimSpace(req.StartDate) != "" {
		start, err := models.ParseTimestamp(req.StartDate)
		if err != nil {
			return in, fmt.Errorf("%w: startDate: %v", services.ErrInvalidInput, err)
		}
		in.StartDate = start
	}
	if strings.TrimSpace(req.EndDate) != "" {
		end, err := models.ParseTimestamp(req.EndDate)
		if err != nil {
			return in, fmt.Errorf("%w: endDate: %v", services.ErrInvalidInput, err)
		}
		in.EndDate = &end
	}
	return in, nil
}

type quoteResponse struct {
	Amount       amount `json:"amount"`
	Formatted    string `json:"formatted"`
	Units        int64  `json:"units"`
	Rate         amount `json:"rate"`
	RateResolved bool   `json:"rateResolved"`
	Manual       bool   `json:"manual"`
	OpenEnded    bool   `json:"openEnded"`
	Duration     string `json:"duration,omitempty"`
	DurationHrs  int64  `json:"durationHours"`
}

func newQuote(q pricing.Quote) quoteResponse {
	out := quoteResponse{
		Amount:       amount(q.Amount),
		Formatted:    pricing.FormatAmount(q.Amount),
		Units:        q.Units,
		Rate:         amount(q.Rate),
		RateResolved: q.RateResolved,
		Manual:       q.Manual,
		OpenEnded:    q.OpenEnded,
	}
	if !q.OpenEnded {
		b := q.Breakdown()
		out.Duration = b.String()
		out.DurationHrs = b.TotalHours
	}
	return out
}

type orderViewResponse struct {
	Order      models.Order  `json:"order"`
	Quote      quoteResponse `json:"quote"`
	Expired    bool          `json:"expired"`
	EndingSoon bool          `json:"endingSoon"`
}

func newOrderView(v services.OrderView) orderViewResponse {
	return orderViewResponse{
		Order:      v.Order,
		Quote:      newQuote(v.Quote),
		Expired:    v.State.Expired,
		EndingSoon: v.State.EndingSoon,
	}
}

func newOrderViews(views []services.OrderView) []orderViewResponse {
	out := make([]orderViewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, newOrderView(v))
	}
	return out
}

type dashboardResponse struct {
	Orders          []orderViewResponse `json:"orders"`
	ExpectedRevenue amount              `json:"expectedRevenue"`
}

type productCountResponse struct {
	Product string `json:"product"`
	Count   int    `json:"count"`
}

type historyResponse struct {
	Filter string                 `json:"filter"`
	Orders []orderViewResponse    `json:"orders"`
	Counts []productCountResponse `json:"counts"`
}

func newHistory(filter reports.MonthFilter, h services.History) historyResponse {
	out := historyResponse{
		Filter: filter.String(),
		Orders: newOrderViews(h.Orders),
		Counts: make([]productCountResponse, 0, len(h.Counts)),
	}
	for _, c := range h.Counts {
		out.Counts = append(out.Counts, productCountResponse{Product: c.Product, Count: c.Count})
	}
	return out
}

type monthTotalResponse struct {
	Month string `json:"month"`
	Label string `json:"label"`
	Total amount `json:"total"`
}

func newMonthTotals(in []reports.MonthTotal) []monthTotalResponse {
	out := make([]monthTotalResponse, 0, len(in))
	for _, m := range in {
		out = append(out, monthTotalResponse{Month: m.Month.String(), Label: m.Month.Label(), Total: amount(m.Total)})
	}
	return out
}

type productTotalResponse struct {
	Product string `json:"product"`
	Total   amount `json:"total"`
}

func newProductTotals(in []reports.ProductTotal) []productTotalResponse {
	out := make([]productTotalResponse, 0, len(in))
	for _, p := range in {
		out = append(out, productTotalResponse{Product: p.Product, Total: amount(p.Total)})
	}
	return out
}

type durationResponse struct {
	Product string `json:"product"`
	Hours   int64  `json:"hours"`
	Label   string `json:"label"`
}

func newDurations(in []reports.ProductDuration) []durationResponse {
	out := make([]durationResponse, 0, len(in))
	for _, d := range in {
		b := d.Breakdown()
		out = append(out, durationResponse{Product: d.Product, Hours: b.TotalHours, Label: b.Short()})
	}
	return out
}

type summaryResponse struct {
	TotalRevenue amount                 `json:"totalRevenue"`
	Monthly      []monthTotalResponse   `json:"monthly"`
	Products     []productTotalResponse `json:"products"`
	Durations    []durationResponse     `json:"durations"`
}

func newSummary(s reports.Summary) summaryResponse {
	return summaryResponse{
		TotalRevenue: amount(s.TotalRevenue),
		Monthly:      newMonthTotals(s.Monthly),
		Products:     newProductTotals(s.Products),
		Durations:    newDurations(s.Durations),
	}
}

type expenseSummaryResponse struct {
	Total   amount               `json:"total"`
	Count   int                  `json:"count"`
	Monthly []monthTotalResponse `json:"monthly"`
}

func newExpenseSummary(s reports.ExpenseSummary) expenseSummaryResponse {
	return expenseSummaryResponse{Total: amount(s.Total), Count: s.Count, Monthly: newMonthTotals(s.Monthly)}
}

type monthProductsResponse struct {
	Month    string                 `json:"month"`
	Label    string                 `json:"label"`
	Products []productTotalResponse `json:"products"`
}

type earningsResponse struct {
	Filter          string                  `json:"filter"`
	Title           string                  `json:"title"`
	GeneratedAt     time.Time               `json:"generatedAt"`
	OrderCount      int                     `json:"orderCount"`
	Revenue         amount                  `json:"revenue"`
	Monthly         []monthTotalResponse    `json:"monthly"`
	ProductsByMonth []monthProductsResponse `json:"productsByMonth"`
	Durations       []durationResponse      `json:"durations"`
	Expenses        expenseSummaryResponse  `json:"expenses"`
	Net             amount                  `json:"net"`
}

func newEarnings(e reports.Earnings) earningsResponse {
	title := "Earnings Report"
	if !e.Filter.All() {
		title += " - " + e.Filter.Label()
	}
	out := earningsResponse{
		Filter:          e.Filter.String(),
		Title:           title,
		GeneratedAt:     e.GeneratedAt,
		OrderCount:      len(e.Orders),
		Revenue:         amount(e.Revenue),
		Monthly:         newMonthTotals(e.Monthly),
		ProductsByMonth: make([]monthProductsResponse, 0, len(e.ProductsByMonth)),
		Durations:       newDurations(e.Durations),
		Expenses:        newExpenseSummary(e.Expenses),
		Net:             amount(e.Net),
	}
	for _, m := range e.ProductsByMonth {
		out.ProductsByMonth = append(out.ProductsByMonth, monthProductsResponse{
			Month:    m.Month.String(),
			Label:    m.Month.Label(),
			Products: newProductTotals(m.Products),
		})
	}
	return out
}

type dayResponse struct {
	Date     string             `json:"date"`
	Day      int                `json:"day"`
	Sunday   bool               `json:"sunday"`
	Today    bool               `json:"today"`
	Status   calendar.DayStatus `json:"status"`
	OrderIDs []string           `json:"orderIds"`
}

type monthViewResponse struct {
	Year          int           `json:"year"`
	Month         int           `json:"month"`
	Label         string        `json:"label"`
	LeadingBlanks int           `json:"leadingBlanks"`
	Days          []dayResponse `json:"days"`
}

func newMonthView(v calendar.MonthView) monthViewResponse {
	out := monthViewResponse{
		Year:          v.Year,
		Month:         int(v.Month),
		Label:         v.Label(),
		LeadingBlanks: v.LeadingBlanks,
		Days:          make([]dayResponse, 0, len(v.Days)),
	}
	for _, d := range v.Days {
		ids := make([]string, 0, len(d.Orders))
		for _, o := range d.Orders {
			ids = append(ids, o.ID)
		}
		out.Days = append(out.Days, dayResponse{
			Date:     d.Date.Format("2006-01-02"),
			Day:      d.Day,
			Sunday:   d.Sunday,
			Today:    d.Today,
			Status:   d.Status,
			OrderIDs: ids,
		})
	}
	return out
}

type dayCoverageResponse struct {
	Date   string              `json:"date"`
	Status calendar.DayStatus  `json:"status"`
	Orders []orderViewResponse `json:"orders"`
}

type productRequest struct {
	Name string     `json:"name"`
	Rate flexString `json:"rate"`
}

type expenseRequest struct {
	Purpose string     `json:"purpose"`
	Amount  flexString `json:"amount"`
	Date    string     `json:"date"`
}

func (req expenseRequest) input() (services.ExpenseInput, error) {
	in := services.ExpenseInput{Purpose: strings.TrimSpace(req.Purpose), Amount: strings.TrimSpace(string(req.Amount))}
	if strings.TrimSpace(req.Date) != "" {
		t, err := models.ParseTimestamp(req.Date)
		if err != nil {
			return in, fmt.Errorf("%w: date: %v", services.ErrInvalidInput, err)
		}
		in.Date = t
	}
	return in, nil
}

type expenseResponse struct {
	Index   int    `json:"index"`
	Purpose string `json:"purpose"`
	Amount  amount `json:"amount"`
	Date    string `json:"date,omitempty"`
}

func newExpense(index int, e models.Expense) expenseResponse {
	out := expenseResponse{Index: index, Purpose: e.Purpose, Amount: amount(e.Amount)}
	if !e.Date.IsZero() {
		out.Date = models.FormatTimestamp(e.Date)
	}
	return out
}

type priceRequest struct {
	Value flexString `json:"value"`
}

type settingsResponse struct {
	Theme    models.Theme    `json:"theme"`
	Currency models.Currency `json:"currency"`
}

type themeRequest struct {
	Theme string `json:"theme"`
}

type currencyRequest struct {
	Code string `json:"code"`
}

type backupSavedResponse struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}
