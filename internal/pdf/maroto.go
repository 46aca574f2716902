package pdf

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	colorPrimary   = &props.Color{Red: 30, Green: 58, Blue: 138}    // brand blue
	colorSecondary = &props.Color{Red: 107, Green: 114, Blue: 128}  // gray-500
	colorAccent    = &props.Color{Red: 251, Green: 191, Blue: 36}   // amber-400
	colorTableHead = &props.Color{Red: 241, Green: 245, Blue: 249}  // slate-100
	colorTableAlt  = &props.Color{Red: 249, Green: 250, Blue: 251}  // gray-50
	colorBorder    = &props.Color{Red: 226, Green: 232, Blue: 240}  // slate-200
	colorText      = &props.Color{Red: 31, Green: 41, Blue: 55}     // gray-800
)

// MarotoRenderer composes the quotation as a declarative component tree
// converted directly to PDF, with no browser engine involved.
type MarotoRenderer struct{}

func NewMarotoRenderer() *MarotoRenderer { return &MarotoRenderer{} }

func (r *MarotoRenderer) Name() string { return "maroto" }

// Available always succeeds; the renderer has no external runtime dependency.
func (r *MarotoRenderer) Available(_ context.Context) error { return nil }

func (r *MarotoRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(12).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	if err := m.RegisterFooter(buildMarotoFooter()); err != nil {
		return nil, fmt.Errorf("register footer: %w", err)
	}

	m.AddRows(buildMarotoHeader(doc)...)
	m.AddRows(row.New(1).WithStyle(&props.Cell{
		BorderType:  border.Bottom,
		BorderColor: colorBorder,
	}))
	m.AddRows(row.New(6))

	m.AddRows(buildMarotoBillTo(doc)...)
	m.AddRows(row.New(6))

	m.AddRows(buildMarotoItemsTable(doc)...)
	m.AddRows(row.New(4))

	m.AddRows(buildMarotoTotals(doc)...)

	if doc.Notes != "" {
		m.AddRows(row.New(6))
		m.AddRows(buildMarotoNotes(doc.Notes)...)
	}

	m.AddRows(row.New(8))
	m.AddRows(buildMarotoTerms()...)

	result, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return result.GetBytes(), nil
}

func buildMarotoHeader(doc Document) []core.Row {
	brandCol := col.New(5).Add(
		text.New("TradeDesk", props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Color: colorPrimary,
			Top:   2,
		}),
		text.New("Electrical & Hardware Supplies", props.Text{
			Size:  8,
			Color: colorSecondary,
			Top:   10,
		}),
	)

	titleCol := col.New(7).Add(
		text.New("QUOTATION", props.Text{
			Size:  22,
			Style: fontstyle.Bold,
			Align: align.Right,
			Color: colorPrimary,
		}),
		text.New(doc.Number, props.Text{
			Size:  10,
			Align: align.Right,
			Color: colorSecondary,
			Top:   11,
		}),
	)

	return []core.Row{row.New(20).Add(brandCol, titleCol)}
}

func buildMarotoBillTo(doc Document) []core.Row {
	var rows []core.Row

	rows = append(rows, row.New(5).Add(
		col.New(6).Add(text.New("BILL TO", props.Text{Size: 7, Style: fontstyle.Bold, Color: colorPrimary})),
		col.New(6).Add(text.New("QUOTATION DETAILS", props.Text{Size: 7, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right})),
	))

	dateStr := doc.CreatedAt.Format("02 Jan 2006")
	rows = append(rows, row.New(5).Add(
		col.New(6).Add(text.New(doc.CustomerName, props.Text{Size: 9, Style: fontstyle.Bold, Color: colorText})),
		col.New(6).Add(text.New("Date: "+dateStr, props.Text{Size: 8, Color: colorSecondary, Align: align.Right})),
	))

	contact := doc.CustomerPhone
	if doc.CustomerEmail != "" {
		if contact != "" {
			contact += "  |  "
		}
		contact += doc.CustomerEmail
	}
	rows = append(rows, row.New(5).Add(
		col.New(6).Add(text.New(contact, props.Text{Size: 8, Color: colorSecondary})),
		col.New(6).Add(text.New("Status: "+doc.Status, props.Text{Size: 8, Style: fontstyle.Bold, Color: colorText, Align: align.Right})),
	))

	if doc.CustomerAddress != "" {
		rows = append(rows, row.New(5).Add(
			col.New(12).Add(text.New(doc.CustomerAddress, props.Text{Size: 8, Color: colorSecondary})),
		))
	}

	return rows
}

func buildMarotoItemsTable(doc Document) []core.Row {
	var rows []core.Row

	headerStyle := props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorText, Top: 1.5}
	headerStyleRight := props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorText, Align: align.Right, Top: 1.5}

	rows = append(rows, row.New(7).Add(
		col.New(2).Add(text.New("Code", headerStyle)),
		col.New(5).Add(text.New("Description", headerStyle)),
		col.New(1).Add(text.New("Qty", headerStyleRight)),
		col.New(2).Add(text.New("Unit Price", headerStyleRight)),
		col.New(2).Add(text.New("Total", headerStyleRight)),
	).WithStyle(&props.Cell{
		BackgroundColor: colorTableHead,
		BorderType:      border.Bottom,
		BorderColor:     colorBorder,
	}))

	normalStyle := props.Text{Size: 8, Color: colorText, Top: 1}
	rightStyle := props.Text{Size: 8, Color: colorText, Align: align.Right, Top: 1}

	for i, item := range doc.Items {
		r := row.New(7).Add(
			col.New(2).Add(text.New(item.ProductCode, normalStyle)),
			col.New(5).Add(text.New(item.ProductName, normalStyle)),
			col.New(1).Add(text.New(fmt.Sprintf("%d", item.Quantity), rightStyle)),
			col.New(2).Add(text.New(FormatPKR(item.UnitPrice), rightStyle)),
			col.New(2).Add(text.New(FormatPKR(item.LineTotal), rightStyle)),
		)
		if i%2 == 1 {
			r.WithStyle(&props.Cell{BackgroundColor: colorTableAlt})
		}
		rows = append(rows, r)
	}

	return rows
}

func buildMarotoTotals(doc Document) []core.Row {
	var rows []core.Row

	rows = append(rows, row.New(1).WithStyle(&props.Cell{
		BorderType:  border.Bottom,
		BorderColor: colorBorder,
	}))
	rows = append(rows, row.New(3))

	labelStyle := props.Text{Size: 9, Color: colorSecondary, Align: align.Right}
	valueStyle := props.Text{Size: 9, Color: colorText, Align: align.Right}

	rows = append(rows, row.New(6).Add(
		col.New(9).Add(text.New("Subtotal", labelStyle)),
		col.New(3).Add(text.New(FormatPKR(doc.Subtotal), valueStyle)),
	))
	rows = append(rows, row.New(6).Add(
		col.New(9).Add(text.New("Tax (0%)", labelStyle)),
		col.New(3).Add(text.New("PKR 0", valueStyle)),
	))
	if doc.DeliveryCharge.IsPositive() {
		rows = append(rows, row.New(6).Add(
			col.New(9).Add(text.New("Delivery", labelStyle)),
			col.New(3).Add(text.New(FormatPKR(doc.DeliveryCharge), valueStyle)),
		))
	}

	rows = append(rows, row.New(2))
	// border.Type values do not combine, so the top rule of the grand
	// total block is its own 1-unit row.
	rows = append(rows, row.New(1).WithStyle(&props.Cell{
		BorderType:  border.Bottom,
		BorderColor: colorBorder,
	}))
	rows = append(rows, row.New(10).Add(
		col.New(9).Add(text.New("GRAND TOTAL", props.Text{
			Size:  12,
			Style: fontstyle.Bold,
			Color: colorPrimary,
			Align: align.Right,
			Top:   2,
		})),
		col.New(3).Add(text.New(FormatPKR(doc.Total), props.Text{
			Size:  12,
			Style: fontstyle.Bold,
			Color: colorPrimary,
			Align: align.Right,
			Top:   2,
		})),
	).WithStyle(&props.Cell{
		BackgroundColor: colorTableHead,
		BorderType:      border.Bottom,
		BorderColor:     colorBorder,
	}))

	return rows
}

func buildMarotoNotes(notes string) []core.Row {
	return []core.Row{
		row.New(5).Add(
			col.New(12).Add(text.New("NOTES", props.Text{
				Size:  8,
				Style: fontstyle.Bold,
				Color: colorPrimary,
			})),
		),
		row.New(12).Add(
			col.New(12).Add(text.New(notes, props.Text{
				Size:  8,
				Color: colorSecondary,
				Top:   1,
			})),
		),
	}
}

func buildMarotoTerms() []core.Row {
	rows := []core.Row{
		row.New(1).WithStyle(&props.Cell{
			BorderType:  border.Bottom,
			BorderColor: colorBorder,
		}),
		row.New(3),
		row.New(5).Add(
			col.New(12).Add(text.New("TERMS & CONDITIONS", props.Text{
				Size:  7,
				Style: fontstyle.Bold,
				Color: colorPrimary,
			})),
		),
	}
	for i, term := range termsAndConditions {
		rows = append(rows, row.New(4).Add(
			col.New(12).Add(text.New(
				fmt.Sprintf("%d.  %s", i+1, term),
				props.Text{Size: 7, Color: colorSecondary},
			)),
		))
	}
	return rows
}

func buildMarotoFooter() core.Row {
	return row.New(10).Add(
		col.New(12).Add(text.New(
			"TradeDesk  |  Hall Road, Lahore  |  +92 300 1234567  |  sales@tradedesk.pk",
			props.Text{Size: 7, Color: colorSecondary, Align: align.Center, Top: 3},
		)),
	)
}
