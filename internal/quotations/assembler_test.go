package quotation

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradedeskhq/tradedesk-backend/internal/pdf"
	product "github.com/tradedeskhq/tradedesk-backend/internal/products"
	pkgerrors "github.com/tradedeskhq/tradedesk-backend/pkg/errors"
)

func newTestAssembler(t *testing.T) (*Assembler, Service, *product.Repository) {
	t.Helper()
	conn := openTestDB(t)
	repo := NewRepository(conn)
	products := product.NewRepository(conn)
	svc, err := NewService(repo, products, plainTxRunner{db: conn}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	asm, err := NewAssembler(repo, products)
	if err != nil {
		t.Fatalf("new assembler: %v", err)
	}
	return asm, svc, products
}

func TestAssembleEnrichesEveryLine(t *testing.T) {
	asm, svc, products := newTestAssembler(t)
	ctx := context.Background()

	items := make([]CreateQuotationItemInput, 0, 4)
	for i := 0; i < 4; i++ {
		p := seedProduct(t, products, fmt.Sprintf("CBL-%03d", i), int64(100*(i+1)))
		items = append(items, CreateQuotationItemInput{ProductID: &p.ID, Quantity: i + 1})
	}

	created, err := svc.CreateQuotation(ctx, CreateQuotationInput{
		CustomerName: "Ali Khan",
		Items:        items,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	doc, err := asm.Assemble(ctx, created.ID)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(doc.Items) != len(items) {
		t.Fatalf("expected %d lines, got %d", len(items), len(doc.Items))
	}
	for i, line := range doc.Items {
		if line.ProductName == pdf.UnknownProductName {
			t.Fatalf("line %d unexpectedly degraded to sentinel", i)
		}
	}
	if doc.Number != created.Number {
		t.Fatalf("unexpected number %q", doc.Number)
	}
	// 1*100 + 2*200 + 3*300 + 4*400 = 3000
	if !doc.Subtotal.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("unexpected subtotal %s", doc.Subtotal)
	}
	if !doc.Total.Equal(doc.Subtotal) {
		t.Fatalf("total %s must equal subtotal %s", doc.Total, doc.Subtotal)
	}
}

func TestAssembleCarriesDeliveryChargeIntoTotal(t *testing.T) {
	asm, svc, products := newTestAssembler(t)
	ctx := context.Background()

	cable := seedProduct(t, products, "CBL-001", 500)
	created, err := svc.CreateQuotation(ctx, CreateQuotationInput{
		CustomerName:    "Ali Khan",
		CustomerAddress: "Shop 12, Hall Road, Lahore",
		DeliveryCharge:  decimal.NewFromInt(500),
		Items:           []CreateQuotationItemInput{{ProductID: &cable.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	doc, err := asm.Assemble(ctx, created.ID)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	if !doc.Subtotal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("unexpected subtotal %s", doc.Subtotal)
	}
	if !doc.DeliveryCharge.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("unexpected delivery charge %s", doc.DeliveryCharge)
	}
	// the rendered grand total must match the stored quotation total
	if got := doc.Total.StringFixed(2); got != created.Total {
		t.Fatalf("document total %s disagrees with stored total %s", got, created.Total)
	}
	if doc.CustomerAddress != "Shop 12, Hall Road, Lahore" {
		t.Fatalf("unexpected address %q", doc.CustomerAddress)
	}
}

func TestAssembleDeletedProductDegradesToSentinels(t *testing.T) {
	asm, svc, products := newTestAssembler(t)
	ctx := context.Background()

	kept := seedProduct(t, products, "CBL-001", 500)
	doomed := seedProduct(t, products, "CBL-002", 900)

	created, err := svc.CreateQuotation(ctx, CreateQuotationInput{
		CustomerName: "Ali Khan",
		Items: []CreateQuotationItemInput{
			{ProductID: &kept.ID, Quantity: 1},
			{ProductID: &doomed.ID, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := products.Delete(ctx, doomed.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	doc, err := asm.Assemble(ctx, created.ID)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	var degraded *pdf.Line
	for i := range doc.Items {
		if doc.Items[i].ProductName == pdf.UnknownProductName {
			degraded = &doc.Items[i]
		}
	}
	if degraded == nil {
		t.Fatal("expected one line degraded to sentinels")
	}
	// name and code sentinels always travel together
	if degraded.ProductCode != pdf.UnknownProductCode {
		t.Fatalf("expected sentinel code, got %q", degraded.ProductCode)
	}
	// pricing history is untouched by the deletion
	if !degraded.LineTotal.Equal(decimal.NewFromInt(1800)) {
		t.Fatalf("unexpected line total %s", degraded.LineTotal)
	}
}

func TestAssembleUnknownQuotation(t *testing.T) {
	asm, _, _ := newTestAssembler(t)
	_, err := asm.Assemble(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
