package quotation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tradedeskhq/tradedesk-backend/internal/pdf"
	"github.com/tradedeskhq/tradedesk-backend/pkg/db/models"
	pkgerrors "github.com/tradedeskhq/tradedesk-backend/pkg/errors"
)

// productResolver resolves current catalog data for line-item enrichment.
type productResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Assembler loads a quotation and enriches each line item with the
// current product's display name and code, resolved concurrently. A
// deleted product degrades that single line to sentinel values rather
// than failing the assembly. The assembler never mutates anything.
type Assembler struct {
	quotations *Repository
	products   productResolver
}

// NewAssembler builds an assembler over the quotation and product stores.
func NewAssembler(quotations *Repository, products productResolver) (*Assembler, error) {
	if quotations == nil {
		return nil, fmt.Errorf("quotation repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product resolver required")
	}
	return &Assembler{quotations: quotations, products: products}, nil
}

// Assemble returns the render-ready document for the quotation.
func (a *Assembler) Assemble(ctx context.Context, quotationID uuid.UUID) (*pdf.Document, error) {
	record, err := a.quotations.FindByID(ctx, quotationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading quotation")
	}

	lines := make([]pdf.Line, len(record.Items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range record.Items {
		g.Go(func() error {
			line := pdf.Line{
				ProductName: pdf.UnknownProductName,
				ProductCode: pdf.UnknownProductCode,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				LineTotal:   item.LineTotal,
			}

			if item.ProductID != nil {
				product, err := a.products.FindByID(gctx, *item.ProductID)
				switch {
				case err == nil:
					line.ProductName = product.Name
					line.ProductCode = product.Code
				case errors.Is(err, gorm.ErrRecordNotFound):
					// keep sentinels
				default:
					return fmt.Errorf("resolving product for line %d: %w", i, err)
				}
			}

			lines[i] = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "enriching line items")
	}

	// Total must agree with the stored total: line subtotal plus the
	// delivery charge captured at creation.
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal)
	}
	return &pdf.Document{
		Number:          record.Number,
		Status:          record.Status.String(),
		CustomerName:    record.CustomerName,
		CustomerPhone:   record.CustomerPhone,
		CustomerEmail:   record.CustomerEmail,
		CustomerAddress: record.CustomerAddress,
		Items:           lines,
		Subtotal:        subtotal,
		DeliveryCharge:  record.DeliveryCharge,
		Total:           subtotal.Add(record.DeliveryCharge),
		Notes:           record.Notes,
		CreatedAt:       record.CreatedAt,
	}, nil
}
