package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Page-unit thresholds for an A4 page (~297mm tall). A new page starts
// before an item row once the cursor passes itemBreakY; the terms block
// applies its own earlier check.
const (
	pageResetY  = 20.0
	itemBreakY  = 250.0
	termsBreakY = 220.0
)

// gradientStrips is the number of horizontal bands used to simulate a
// linear gradient on a surface with no native gradient primitive.
const gradientStrips = 20

// RGB is a plain 8-bit color triple for canvas drawing.
type RGB struct {
	R, G, B int
}

var (
	canvasBrandStart = RGB{R: 30, G: 58, B: 138}  // brand blue
	canvasBrandEnd   = RGB{R: 59, G: 130, B: 246} // lighter blue
	canvasInk        = RGB{R: 31, G: 41, B: 55}
	canvasMuted      = RGB{R: 107, G: 114, B: 128}
	canvasZebra      = RGB{R: 243, G: 244, B: 246}
)

// gradientStripColors interpolates n strip colors linearly between start
// and end. The first strip equals start, the last equals end, and every
// channel moves monotonically in between.
func gradientStripColors(start, end RGB, n int) []RGB {
	if n <= 1 {
		return []RGB{start}
	}
	colors := make([]RGB, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		colors[i] = RGB{
			R: start.R + int(t*float64(end.R-start.R)),
			G: start.G + int(t*float64(end.G-start.G)),
			B: start.B + int(t*float64(end.B-start.B)),
		}
	}
	colors[n-1] = end
	return colors
}

// CanvasRenderer composes the PDF by issuing low-level drawing primitives
// directly against the page. It backs the public share-link endpoint and
// has no runtime dependency beyond the process itself.
type CanvasRenderer struct{}

func NewCanvasRenderer() *CanvasRenderer { return &CanvasRenderer{} }

func (r *CanvasRenderer) Name() string { return "canvas" }

func (r *CanvasRenderer) Available(_ context.Context) error { return nil }

func (r *CanvasRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	y := drawCanvasHeader(pdf, doc)
	y = drawCanvasBillTo(pdf, doc, y)
	y = drawCanvasItems(pdf, doc, y)
	y = drawCanvasTotals(pdf, doc, y)
	y = drawCanvasTerms(pdf, y)
	drawCanvasFooter(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// drawGradientBand paints the area as gradientStrips horizontal strips
// with linearly interpolated fill colors.
func drawGradientBand(pdf *gofpdf.Fpdf, x, y, w, h float64, start, end RGB) {
	colors := gradientStripColors(start, end, gradientStrips)
	stripH := h / float64(len(colors))
	for i, c := range colors {
		pdf.SetFillColor(c.R, c.G, c.B)
		pdf.Rect(x, y+float64(i)*stripH, w, stripH+0.1, "F")
	}
}

func drawCanvasHeader(pdf *gofpdf.Fpdf, doc Document) float64 {
	drawGradientBand(pdf, 10, 10, 190, 30, canvasBrandStart, canvasBrandEnd)

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetXY(16, 16)
	pdf.CellFormat(100, 10, "TradeDesk", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(16, 26)
	pdf.CellFormat(100, 6, "Electrical & Hardware Supplies", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(120, 16)
	pdf.CellFormat(74, 8, "QUOTATION", "", 0, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(120, 25)
	pdf.CellFormat(74, 6, doc.Number+"  ("+doc.Status+")", "", 0, "R", false, 0, "")

	return 46
}

func drawCanvasBillTo(pdf *gofpdf.Fpdf, doc Document, y float64) float64 {
	pdf.SetTextColor(canvasMuted.R, canvasMuted.G, canvasMuted.B)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(10, y)
	pdf.CellFormat(95, 5, "BILL TO", "", 0, "L", false, 0, "")
	pdf.SetXY(105, y)
	pdf.CellFormat(95, 5, "DATE", "", 0, "R", false, 0, "")
	y += 5

	pdf.SetTextColor(canvasInk.R, canvasInk.G, canvasInk.B)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(10, y)
	pdf.CellFormat(95, 6, doc.CustomerName, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(105, y)
	pdf.CellFormat(95, 6, doc.CreatedAt.Format("02 Jan 2006"), "", 0, "R", false, 0, "")
	y += 6

	if doc.CustomerPhone != "" {
		pdf.SetTextColor(canvasMuted.R, canvasMuted.G, canvasMuted.B)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetXY(10, y)
		pdf.CellFormat(95, 5, doc.CustomerPhone, "", 0, "L", false, 0, "")
		y += 5
	}

	if doc.CustomerAddress != "" {
		pdf.SetTextColor(canvasMuted.R, canvasMuted.G, canvasMuted.B)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetXY(10, y)
		pdf.CellFormat(95, 5, doc.CustomerAddress, "", 0, "L", false, 0, "")
		y += 5
	}

	return y + 6
}

func drawCanvasItemsHeader(pdf *gofpdf.Fpdf, y float64) float64 {
	pdf.SetFillColor(canvasBrandStart.R, canvasBrandStart.G, canvasBrandStart.B)
	pdf.Rect(10, y, 190, 8, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(12, y+1.5)
	pdf.CellFormat(24, 5, "Code", "", 0, "L", false, 0, "")
	pdf.SetXY(38, y+1.5)
	pdf.CellFormat(80, 5, "Description", "", 0, "L", false, 0, "")
	pdf.SetXY(118, y+1.5)
	pdf.CellFormat(16, 5, "Qty", "", 0, "R", false, 0, "")
	pdf.SetXY(136, y+1.5)
	pdf.CellFormat(30, 5, "Unit Price", "", 0, "R", false, 0, "")
	pdf.SetXY(166, y+1.5)
	pdf.CellFormat(32, 5, "Total", "", 0, "R", false, 0, "")

	return y + 10
}

func drawCanvasItems(pdf *gofpdf.Fpdf, doc Document, y float64) float64 {
	y = drawCanvasItemsHeader(pdf, y)

	for i, item := range doc.Items {
		if y > itemBreakY {
			pdf.AddPage()
			y = pageResetY
			y = drawCanvasItemsHeader(pdf, y)
		}

		if i%2 == 1 {
			pdf.SetFillColor(canvasZebra.R, canvasZebra.G, canvasZebra.B)
			pdf.Rect(10, y-1, 190, 8, "F")
		}

		pdf.SetTextColor(canvasInk.R, canvasInk.G, canvasInk.B)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetXY(12, y)
		pdf.CellFormat(24, 6, item.ProductCode, "", 0, "L", false, 0, "")
		pdf.SetXY(38, y)
		pdf.CellFormat(80, 6, item.ProductName, "", 0, "L", false, 0, "")
		pdf.SetXY(118, y)
		pdf.CellFormat(16, 6, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		pdf.SetXY(136, y)
		pdf.CellFormat(30, 6, FormatPKR(item.UnitPrice), "", 0, "R", false, 0, "")
		pdf.SetXY(166, y)
		pdf.CellFormat(32, 6, FormatPKR(item.LineTotal), "", 0, "R", false, 0, "")

		y += 8
	}

	return y + 4
}

func drawCanvasTotals(pdf *gofpdf.Fpdf, doc Document, y float64) float64 {
	if y > itemBreakY {
		pdf.AddPage()
		y = pageResetY
	}

	pdf.SetTextColor(canvasMuted.R, canvasMuted.G, canvasMuted.B)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(120, y)
	pdf.CellFormat(40, 6, "Subtotal", "", 0, "L", false, 0, "")
	pdf.SetXY(160, y)
	pdf.CellFormat(38, 6, FormatPKR(doc.Subtotal), "", 0, "R", false, 0, "")
	y += 6

	pdf.SetXY(120, y)
	pdf.CellFormat(40, 6, "Tax (0%)", "", 0, "L", false, 0, "")
	pdf.SetXY(160, y)
	pdf.CellFormat(38, 6, "PKR 0", "", 0, "R", false, 0, "")
	y += 6

	if doc.DeliveryCharge.IsPositive() {
		pdf.SetXY(120, y)
		pdf.CellFormat(40, 6, "Delivery", "", 0, "L", false, 0, "")
		pdf.SetXY(160, y)
		pdf.CellFormat(38, 6, FormatPKR(doc.DeliveryCharge), "", 0, "R", false, 0, "")
		y += 6
	}
	y++

	drawGradientBand(pdf, 118, y, 82, 10, canvasBrandStart, canvasBrandEnd)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(120, y+2)
	pdf.CellFormat(40, 6, "Grand Total", "", 0, "L", false, 0, "")
	pdf.SetXY(156, y+2)
	pdf.CellFormat(42, 6, FormatPKR(doc.Total), "", 0, "R", false, 0, "")

	return y + 16
}

func drawCanvasTerms(pdf *gofpdf.Fpdf, y float64) float64 {
	if y > termsBreakY {
		pdf.AddPage()
		y = pageResetY
	}

	pdf.SetTextColor(canvasBrandStart.R, canvasBrandStart.G, canvasBrandStart.B)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(10, y)
	pdf.CellFormat(190, 6, "Terms & Conditions", "", 0, "L", false, 0, "")
	y += 7

	pdf.SetTextColor(canvasMuted.R, canvasMuted.G, canvasMuted.B)
	pdf.SetFont("Helvetica", "", 8)
	for i, term := range termsAndConditions {
		pdf.SetXY(12, y)
		pdf.CellFormat(186, 5, fmt.Sprintf("%d. %s", i+1, term), "", 0, "L", false, 0, "")
		y += 5
	}

	return y + 4
}

func drawCanvasFooter(pdf *gofpdf.Fpdf) {
	drawGradientBand(pdf, 10, 278, 190, 12, canvasBrandEnd, canvasBrandStart)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(10, 281)
	pdf.CellFormat(190, 6, "TradeDesk  |  Hall Road, Lahore  |  +92 300 1234567  |  sales@tradedesk.pk", "", 0, "C", false, 0, "")
}
