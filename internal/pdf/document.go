package pdf

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel display values for line items whose product no longer exists.
const (
	UnknownProductName = "Unknown Product"
	UnknownProductCode = "N/A"
)

// Line is a quotation line item enriched with current catalog display data.
// A line is either fully resolved or carries both sentinel values.
type Line struct {
	ProductCode string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// Document is the render-ready projection of a quotation. It is assembled
// per request and treated as read-only by every renderer.
type Document struct {
	Number          string
	Status          string
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	CustomerAddress string
	Items           []Line
	Subtotal        decimal.Decimal
	DeliveryCharge  decimal.Decimal
	Total           decimal.Decimal
	Notes           string
	CreatedAt       time.Time
}

// Renderer is one concrete method of turning a document into PDF bytes.
// Available lets the chain skip a strategy whose runtime dependency is
// missing without paying for a full render attempt.
type Renderer interface {
	Name() string
	Available(ctx context.Context) error
	Render(ctx context.Context, doc Document) ([]byte, error)
}
