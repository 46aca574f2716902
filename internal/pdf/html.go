package pdf

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"
)

// termsAndConditions is the fixed six-bullet block printed on every quotation.
var termsAndConditions = []string{
	"This quotation is valid for 30 days from the date of issue.",
	"Prices are subject to change without prior notice after the validity period.",
	"Payment terms: 50% advance with order, 50% before delivery.",
	"Delivery within 7-14 working days from order confirmation.",
	"All prices are quoted in Pakistani Rupees (PKR).",
	"Goods once sold can only be returned within 7 days in original condition.",
}

var quotationTmpl = template.Must(template.New("quotation").Funcs(template.FuncMap{
	"money": FormatPKR,
}).Parse(quotationHTML))

type htmlRow struct {
	Index       int
	ProductCode string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	Zebra       bool
}

type htmlData struct {
	Doc      Document
	Rows     []htmlRow
	Terms    []string
	Date     string
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Delivery decimal.Decimal
	Total    decimal.Decimal
}

// RenderHTML deterministically produces a single self-contained HTML
// document for the quotation. It is shared by the browser-based PDF
// strategies and the preview endpoint.
func RenderHTML(doc Document) (string, error) {
	rows := make([]htmlRow, 0, len(doc.Items))
	for i, item := range doc.Items {
		rows = append(rows, htmlRow{
			Index:       i + 1,
			ProductCode: item.ProductCode,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
			Zebra:       i%2 == 1,
		})
	}

	data := htmlData{
		Doc:      doc,
		Rows:     rows,
		Terms:    termsAndConditions,
		Date:     doc.CreatedAt.Format("02 Jan 2006"),
		Subtotal: doc.Subtotal,
		Tax:      decimal.Zero,
		Delivery: doc.DeliveryCharge,
		Total:    doc.Total,
	}

	var buf bytes.Buffer
	if err := quotationTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing quotation template: %w", err)
	}
	return buf.String(), nil
}

const quotationHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Quotation {{.Doc.Number}}</title>
</head>
<body style="margin:0;padding:24px;font-family:Helvetica,Arial,sans-serif;color:#1f2937;background:#ffffff;">

<div style="background:#1e3a8a;color:#ffffff;padding:24px;border-radius:8px 8px 0 0;">
  <table style="width:100%;border-collapse:collapse;">
    <tr>
      <td style="vertical-align:top;">
        <div style="font-size:24px;font-weight:bold;">TradeDesk</div>
        <div style="font-size:12px;opacity:0.85;margin-top:4px;">Electrical &amp; Hardware Supplies</div>
      </td>
      <td style="text-align:right;vertical-align:top;">
        <div style="font-size:20px;font-weight:bold;">QUOTATION</div>
        <div style="font-size:13px;margin-top:4px;">{{.Doc.Number}}</div>
        <div style="display:inline-block;margin-top:6px;padding:3px 10px;border-radius:10px;background:#fbbf24;color:#1f2937;font-size:11px;text-transform:uppercase;">{{.Doc.Status}}</div>
      </td>
    </tr>
  </table>
</div>

<table style="width:100%;border-collapse:collapse;margin-top:16px;">
  <tr>
    <td style="width:50%;vertical-align:top;padding-right:12px;">
      <div style="font-size:11px;color:#6b7280;text-transform:uppercase;letter-spacing:1px;">Bill To</div>
      <div style="font-size:15px;font-weight:bold;margin-top:4px;">{{.Doc.CustomerName}}</div>
      {{if .Doc.CustomerPhone}}<div style="font-size:12px;margin-top:2px;">{{.Doc.CustomerPhone}}</div>{{end}}
      {{if .Doc.CustomerEmail}}<div style="font-size:12px;margin-top:2px;">{{.Doc.CustomerEmail}}</div>{{end}}
      {{if .Doc.CustomerAddress}}<div style="font-size:12px;margin-top:2px;">{{.Doc.CustomerAddress}}</div>{{end}}
    </td>
    <td style="width:50%;vertical-align:top;text-align:right;">
      <div style="font-size:11px;color:#6b7280;text-transform:uppercase;letter-spacing:1px;">Quotation Details</div>
      <div style="font-size:12px;margin-top:4px;">Date: {{.Date}}</div>
      <div style="font-size:12px;margin-top:2px;">Items: {{len .Rows}}</div>
    </td>
  </tr>
</table>

<table style="width:100%;border-collapse:collapse;margin-top:16px;font-size:12px;">
  <thead>
    <tr style="background:#1e3a8a;color:#ffffff;">
      <th style="padding:8px;text-align:left;">#</th>
      <th style="padding:8px;text-align:left;">Code</th>
      <th style="padding:8px;text-align:left;">Description</th>
      <th style="padding:8px;text-align:right;">Qty</th>
      <th style="padding:8px;text-align:right;">Unit Price</th>
      <th style="padding:8px;text-align:right;">Total</th>
    </tr>
  </thead>
  <tbody>
    {{range .Rows}}
    <tr style="{{if .Zebra}}background:#f3f4f6;{{end}}border-bottom:1px solid #e5e7eb;">
      <td style="padding:8px;">{{.Index}}</td>
      <td style="padding:8px;">{{.ProductCode}}</td>
      <td style="padding:8px;">{{.ProductName}}</td>
      <td style="padding:8px;text-align:right;">{{.Quantity}}</td>
      <td style="padding:8px;text-align:right;">{{money .UnitPrice}}</td>
      <td style="padding:8px;text-align:right;">{{money .LineTotal}}</td>
    </tr>
    {{end}}
  </tbody>
</table>

<table style="width:40%;margin-left:60%;border-collapse:collapse;margin-top:12px;font-size:12px;">
  <tr>
    <td style="padding:4px 8px;">Subtotal</td>
    <td style="padding:4px 8px;text-align:right;">{{money .Subtotal}}</td>
  </tr>
  <tr>
    <td style="padding:4px 8px;">Tax (0%)</td>
    <td style="padding:4px 8px;text-align:right;">{{money .Tax}}</td>
  </tr>
  {{if .Delivery.IsPositive}}
  <tr>
    <td style="padding:4px 8px;">Delivery</td>
    <td style="padding:4px 8px;text-align:right;">{{money .Delivery}}</td>
  </tr>
  {{end}}
  <tr style="background:#1e3a8a;color:#ffffff;font-weight:bold;">
    <td style="padding:6px 8px;">Grand Total</td>
    <td style="padding:6px 8px;text-align:right;">{{money .Total}}</td>
  </tr>
</table>

{{if .Doc.Notes}}
<div style="margin-top:16px;padding:10px;background:#fef3c7;border-radius:6px;font-size:12px;">{{.Doc.Notes}}</div>
{{end}}

<div style="margin-top:20px;">
  <div style="font-size:13px;font-weight:bold;color:#1e3a8a;">Terms &amp; Conditions</div>
  <ul style="font-size:11px;color:#4b5563;margin-top:6px;padding-left:18px;">
    {{range .Terms}}<li style="margin-bottom:3px;">{{.}}</li>{{end}}
  </ul>
</div>

<div style="margin-top:24px;padding:14px;background:#1e3a8a;color:#ffffff;border-radius:0 0 8px 8px;text-align:center;font-size:11px;">
  TradeDesk &middot; Hall Road, Lahore &middot; +92 300 1234567 &middot; sales@tradedesk.pk
</div>

</body>
</html>
`
