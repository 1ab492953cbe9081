package render

const baseStyle = `
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 32px;
      font-family: "Helvetica Neue", Arial, sans-serif;
      color: #111827;
    }
    .page { max-width: 820px; margin: 0 auto; }
    h1 { border-bottom: 2px solid #006aff; padding-bottom: 12px; }
    h2 { font-size: 16px; margin-top: 28px; }
    .muted { color: #6b7280; font-size: 12px; }
    table { width: 100%; border-collapse: collapse; font-size: 14px; }
    th, td { padding: 8px 10px; border-bottom: 1px solid #e5e7eb; text-align: left; }
    th { text-transform: uppercase; font-size: 11px; color: #6b7280; }
    .total { text-align: right; font-size: 16px; margin-top: 12px; }
`

const invoiceHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Invoice {{.Order.ID}}</title>
  <style>` + baseStyle + `</style>
</head>
<body>
  <div class="page">
    <h1>Rental Invoice</h1>
    <div class="muted">Invoice {{.Order.ID}} &middot; issued {{date .IssuedAt}}</div>

    <h2>Renter</h2>
    <table>
      <tr><th>Name</th><td>{{.Order.UserName}}</td></tr>
      <tr><th>Location</th><td>{{.Order.Location}}</td></tr>
      <tr><th>Phone</th><td>{{.Order.Phone1}}{{if .Order.Phone2}}, {{.Order.Phone2}}{{end}}{{if .Order.Phone3}}, {{.Order.Phone3}}{{end}}</td></tr>
    </table>

    <h2>Rental</h2>
    <table>
      <thead>
        <tr><th>Product</th><th>Start</th><th>End</th><th>Duration</th><th>Units (12h)</th><th>Rate</th><th>Amount</th></tr>
      </thead>
      <tbody>
        <tr>
          <td>{{.Order.ProductName}}</td>
          <td>{{dateTime .Order.StartDate}}</td>
          <td>{{dateTime .Order.EndDate}}</td>
          <td>{{if .Quote.OpenEnded}}-{{else}}{{.Quote.Breakdown}}{{end}}</td>
          <td>{{.Quote.Units}}</td>
          <td>{{money .Quote.Rate .Currency}}{{if not .Quote.RateResolved}} (product removed){{end}}</td>
          <td>{{money .Quote.Amount .Currency}}{{if .Quote.Manual}} (Edited){{end}}</td>
        </tr>
      </tbody>
    </table>
    {{if .Order.Extra}}<p class="muted">{{.Order.Extra}}</p>{{end}}

    <div class="total">Total <strong>{{money .Quote.Amount .Currency}}</strong></div>
  </div>
</body>
</html>
`

const earningsHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Earnings Report</title>
  <style>` + baseStyle + `</style>
</head>
<body>
  <div class="page">
    <h1>Earnings Report{{if not .Earnings.Filter.All}} - {{.Earnings.Filter.Label}}{{end}}</h1>
    <div class="muted">Generated on: {{date .Earnings.GeneratedAt}}</div>
    {{if .Earnings.Empty}}
    <p>No completed orders found for this period.</p>
    {{else}}
    <h2>Monthly Earnings Summary</h2>
    <table>
      <thead><tr><th>Month</th><th>Total Revenue</th></tr></thead>
      <tbody>
        {{range .Earnings.Monthly}}
        <tr><td>{{.Month.Label}}</td><td>{{money .Total $.Currency}}</td></tr>
        {{end}}
      </tbody>
    </table>

    <h2>Product Monthly Breakdown</h2>
    <table>
      <thead><tr><th>Month</th><th>Product</th><th>Revenue</th></tr></thead>
      <tbody>
        {{range $m := .Earnings.ProductsByMonth}}{{range .Products}}
        <tr><td>{{$m.Month.Label}}</td><td>{{.Product}}</td><td>{{money .Total $.Currency}}</td></tr>
        {{end}}{{end}}
      </tbody>
    </table>

    <h2>Product Days Breakdown</h2>
    <table>
      <thead><tr><th>Product</th><th>Total Duration</th></tr></thead>
      <tbody>
        {{range .Earnings.Durations}}
        <tr><td>{{.Product}}</td><td>{{.Breakdown.Short}}</td></tr>
        {{end}}
      </tbody>
    </table>
    {{end}}

    <h2>Totals</h2>
    <table>
      <tr><th>Revenue</th><td>{{money .Earnings.Revenue .Currency}}</td></tr>
      <tr><th>Expenses ({{.Earnings.Expenses.Count}})</th><td>{{money .Earnings.Expenses.Total .Currency}}</td></tr>
      <tr><th>Net</th><td>{{money .Earnings.Net .Currency}}</td></tr>
    </table>
  </div>
</body>
</html>
`
