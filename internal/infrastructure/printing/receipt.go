package printing

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/emedico/backend/internal/domain/order"
	"github.com/emedico/backend/internal/domain/shared/valueobject"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Receipt {{.Order.OrderNumber}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #1f2937; }
h1 { font-size: 20px; margin: 0; color: #0f766e; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { padding: 6px 4px; border-bottom: 1px solid #e5e7eb; text-align: left; }
td.num, th.num { text-align: right; }
.totals td { border: none; }
.grand td { font-weight: bold; font-size: 14px; border-top: 2px solid #1f2937; }
.muted { color: #6b7280; }
</style>
</head>
<body>
<h1>{{.StoreName}}</h1>
<p class="muted">Order {{.Order.OrderNumber}} &middot; {{datetime .Order.PlacedAt}} &middot; {{title (print .Order.Status)}}</p>
{{- if eq (print .Order.Fulfillment) "delivery"}}
<p>
<strong>Deliver to</strong><br>
{{.Order.Address.FullName}}<br>
{{.Order.Address.AddressLine1}}<br>
{{.Order.Address.City}} {{.Order.Address.ZipCode}}<br>
{{.Order.Address.PhoneNumber}}
</p>
{{- else}}
<p><strong>In-store pickup</strong></p>
{{- end}}
<p class="muted">Payment: {{paymentLabel .Order.PaymentMethod}}</p>
<table>
<thead><tr><th>Item</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Total</th></tr></thead>
<tbody>
{{- range .Order.Items}}
<tr><td>{{.Name}}</td><td class="num">{{.Quantity}}</td><td class="num">{{money .UnitPrice}}</td><td class="num">{{money .LineTotal}}</td></tr>
{{- end}}
</tbody>
</table>
<table class="totals">
<tr><td>Subtotal</td><td class="num">{{money .Order.Subtotal}}</td></tr>
<tr><td>Estimated tax (5%)</td><td class="num">{{money .Order.Tax}}</td></tr>
<tr><td>Shipping</td><td class="num">{{if .Order.Shipping.IsZero}}FREE{{else}}{{money .Order.Shipping}}{{end}}</td></tr>
<tr class="grand"><td>Total</td><td class="num">{{money .Order.Total}}</td></tr>
</table>
</body>
</html>`

var receiptFuncs = template.FuncMap{
	"money": func(m valueobject.Money) string {
		return "$" + m.Display()
	},
	"datetime": func(t time.Time) string {
		return t.UTC().Format("Jan 2, 2006 15:04 MST")
	},
	"title": func(s string) string {
		return cases.Title(language.English).String(s)
	},
	"paymentLabel": func(m order.PaymentMethod) string {
		switch m {
		case order.PaymentCreditCard:
			return "Credit card"
		case order.PaymentPayPal:
			return "PayPal"
		case order.PaymentCashOnDelivery:
			return "Cash on delivery"
		}
		return string(m)
	},
}

var parsedReceipt = template.Must(template.New("receipt").Funcs(receiptFuncs).Parse(receiptTemplate))

const pageFooter = `<div style="font-size:8px;width:100%;text-align:center;"><span class="pageNumber"></span> / <span class="totalPages"></span></div>`

// RenderReceiptHTML fills the receipt template for o.
func RenderReceiptHTML(storeName string, o *order.Order) (string, error) {
	var buf bytes.Buffer
	err := parsedReceipt.Execute(&buf, struct {
		StoreName string
		Order     *order.Order
	}{storeName, o})
	if err != nil {
		return "", fmt.Errorf("receipt template: %w", err)
	}
	return buf.String(), nil
}

// ReceiptPrinter prints placed orders as A4 PDF receipts.
type ReceiptPrinter struct {
	renderer  Renderer
	storeName string
}

func NewReceiptPrinter(renderer Renderer, storeName string) *ReceiptPrinter {
	return &ReceiptPrinter{renderer: renderer, storeName: cmp.Or(storeName, "E-Medico")}
}

func (p *ReceiptPrinter) PrintReceipt(ctx context.Context, o *order.Order) ([]byte, error) {
	body, err := RenderReceiptHTML(p.storeName, o)
	if err != nil {
		return nil, err
	}
	return p.renderer.Render(ctx, Document{
		HTML:     body,
		Title:    "Receipt " + o.OrderNumber,
		Paper:    A4,
		MarginMM: 10,
		Footer:   pageFooter,
	})
}
