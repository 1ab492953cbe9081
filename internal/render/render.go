package render

import (
	"bytes"
	"html/template"
	"time"

	"RentalLedger/internal/models"
	"RentalLedger/internal/pricing"
	"RentalLedger/internal/reports"
)

// InvoiceInput is everything needed to render one order's invoice.
type InvoiceInput struct {
	Order    models.Order
	Quote    pricing.Quote
	Currency models.Currency
	IssuedAt time.Time
}

// EarningsInput is the filtered earnings report plus presentation settings.
type EarningsInput struct {
	Earnings reports.Earnings
	Currency models.Currency
}

type Renderer interface {
	RenderInvoice(input InvoiceInput) (string, error)
	RenderEarnings(input EarningsInput) (string, error)
}

type HTMLRenderer struct {
	invoice  *template.Template
	earnings *template.Template
}

func NewRenderer() Renderer {
	funcs := template.FuncMap{
		"money":    formatMoney,
		"date":     formatDate,
		"dateTime": formatDateTime,
	}
	return &HTMLRenderer{
		invoice:  template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTMLTemplate)),
		earnings: template.Must(template.New("earnings").Funcs(funcs).Parse(earningsHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderInvoice(input InvoiceInput) (string, error) {
	if input.Currency.Code == "" {
		input.Currency, _ = models.LookupCurrency(models.DefaultCurrency)
	}
	var buf bytes.Buffer
	if err := r.invoice.Execute(&buf, input); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *HTMLRenderer) RenderEarnings(input EarningsInput) (string, error) {
	if input.Currency.Code == "" {
		input.Currency, _ = models.LookupCurrency(models.DefaultCurrency)
	}
	var buf bytes.Buffer
	if err := r.earnings.Execute(&buf, input); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatMoney(v float64, c models.Currency) string {
	return c.Symbol + pricing.FormatAmount(v)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(models.Location).Format("2006-01-02")
}

func formatDateTime(value any) string {
	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	case *time.Time:
		if v == nil {
			return "Open-ended"
		}
		t = *v
	}
	if t.IsZero() {
		return "-"
	}
	return t.In(models.Location).Format("2006-01-02 15:04")
}
