package pdf

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMarotoRendererProducesPDF(t *testing.T) {
	r := NewMarotoRenderer()
	if err := r.Available(context.Background()); err != nil {
		t.Fatalf("maroto renderer must always be available: %v", err)
	}

	data, err := r.Render(context.Background(), sampleDocument())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected PDF magic header, got %q", data[:8])
	}
}

func TestMarotoRendererWithDeliveryAndAddress(t *testing.T) {
	doc := sampleDocument()
	doc.CustomerAddress = "Shop 12, Hall Road, Lahore"
	doc.DeliveryCharge = decimal.NewFromInt(500)
	doc.Total = doc.Subtotal.Add(doc.DeliveryCharge)

	data, err := NewMarotoRenderer().Render(context.Background(), doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected PDF magic header")
	}
}

func TestMarotoRendererHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewMarotoRenderer()
	if _, err := r.Render(ctx, sampleDocument()); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
