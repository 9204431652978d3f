package render

import (
	"bytes"
	"html/template"
	"time"
)

const billHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Bill - {{.Customer.Name}}</title>
  <style>
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 24px;
      font-family: "Helvetica Neue", Arial, sans-serif;
      color: #111827;
      background: #ffffff;
    }
    .bill {
      max-width: 640px;
      margin: 0 auto;
    }
    .header {
      display: flex;
      justify-content: space-between;
      border-bottom: 2px solid #0f766e;
      padding-bottom: 12px;
      margin-bottom: 20px;
    }
    .label {
      color: #6b7280;
      text-transform: uppercase;
      letter-spacing: 0.04em;
      font-size: 11px;
    }
    .section { margin-bottom: 20px; }
    table {
      width: 100%;
      border-collapse: collapse;
      font-size: 14px;
    }
    th, td {
      padding: 8px;
      border-bottom: 1px solid #e5e7eb;
      text-align: left;
    }
    th {
      text-transform: uppercase;
      font-size: 11px;
      color: #6b7280;
    }
    .totals {
      margin-top: 12px;
      display: flex;
      justify-content: flex-end;
      font-size: 16px;
    }
    .totals strong { margin-left: 12px; }
    .pending {
      font-size: 13px;
      color: #6b7280;
    }
  </style>
</head>
<body>
  <div class="bill">
    <div class="header">
      <div>
        <div><strong>{{.Business.Name}}</strong></div>
        <div>{{.Business.Address}}</div>
        <div>{{.Business.Phone}}</div>
      </div>
      <div>
        <div class="label">Bill Date</div>
        <div><strong>{{formatDate .Bill.Date}}</strong></div>
        <div class="label">Bill Day</div>
        <div>{{.Bill.BillDay}} of every month</div>
      </div>
    </div>

    <div class="section">
      <div class="label">Customer</div>
      <div><strong>{{.Customer.Name}}</strong></div>
      <div>{{.Customer.Address}}</div>
      <div>{{.Customer.Phone}}</div>
    </div>

    <div class="section">
      <table>
        <thead>
          <tr>
            <th>Description</th>
            <th>Quantity</th>
            <th>Rate</th>
            <th>Amount</th>
          </tr>
        </thead>
        <tbody>
          {{range .Lines}}
          <tr>
            <td>{{.Description}}</td>
            <td>{{.Quantity}}</td>
            <td>{{.Rate}}</td>
            <td>{{.Amount}}</td>
          </tr>
          {{end}}
        </tbody>
      </table>
      <div class="totals">
        <span>Amount Due</span>
        <strong>&#8377; {{.Bill.DueAmount}}</strong>
      </div>
      <div class="pending">
        Jars to return: {{.Bill.PendingJar}} &middot; Capsules to return: {{.Bill.PendingCapsule}}
      </div>
    </div>
  </div>
</body>
</html>
`

type HTMLRenderer struct {
	tpl *template.Template
}

func NewRenderer() Renderer {
	funcs := template.FuncMap{
		"formatDate": formatDate,
	}
	return &HTMLRenderer{
		tpl: template.Must(template.New("bill").Funcs(funcs).Parse(billHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderHTML(input BillInput) (string, error) {
	if input.Business.Name == "" {
		input.Business.Name = "FG Plant"
	}

	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, input); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Format("2006-01-02")
}
