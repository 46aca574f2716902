package dashboard

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tradedeskhq/tradedesk-backend/internal/activity"
	product "github.com/tradedeskhq/tradedesk-backend/internal/products"
	quotation "github.com/tradedeskhq/tradedesk-backend/internal/quotations"
	"github.com/tradedeskhq/tradedesk-backend/pkg/db/models"
	"github.com/tradedeskhq/tradedesk-backend/pkg/enums"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

func TestSummarize(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	products := product.NewRepository(conn)
	quotations := quotation.NewRepository(conn)
	catalog, err := product.NewService(products)
	if err != nil {
		t.Fatalf("product service: %v", err)
	}
	feed, err := activity.NewRecorder(activity.NewRepository(conn), nil)
	if err != nil {
		t.Fatalf("recorder: %v", err)
	}

	// two products, one running low
	for i, qty := range []int{40, 2} {
		_, err := products.Create(ctx, &models.Product{
			Code:     fmt.Sprintf("CBL-%03d", i),
			Name:     fmt.Sprintf("Product %d", i),
			Quantity: qty,
			Price:    decimal.NewFromInt(100),
		})
		if err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	// quotations in two states
	for i, status := range []enums.QuotationStatus{
		enums.QuotationStatusPending,
		enums.QuotationStatusPending,
		enums.QuotationStatusSent,
	} {
		_, err := quotations.Create(ctx, &models.Quotation{
			Number:       fmt.Sprintf("QT-%04d", i+1),
			CustomerName: "Ali",
			Total:        decimal.NewFromInt(500),
			Status:       status,
		})
		if err != nil {
			t.Fatalf("seed quotation: %v", err)
		}
	}

	feed.Record(ctx, activity.Entry{Action: enums.ActivityActionLogin})
	feed.Wait()

	svc, err := NewService(products, quotations, catalog, feed)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	summary, err := svc.Summarize(ctx)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	if summary.ProductCount != 2 {
		t.Fatalf("expected 2 products, got %d", summary.ProductCount)
	}
	if summary.QuotationCount != 3 {
		t.Fatalf("expected 3 quotations, got %d", summary.QuotationCount)
	}
	if summary.PendingQuotations != 2 || summary.SentQuotations != 1 || summary.CancelledQuotations != 0 {
		t.Fatalf("unexpected status counts: %+v", summary)
	}
	if summary.PendingTotal != "1000.00" {
		t.Fatalf("expected pending total 1000.00, got %s", summary.PendingTotal)
	}
	if summary.SentTotal != "500.00" {
		t.Fatalf("expected sent total 500.00, got %s", summary.SentTotal)
	}
	if len(summary.LowStock) != 1 || summary.LowStock[0].Code != "CBL-001" {
		t.Fatalf("unexpected low stock list: %+v", summary.LowStock)
	}
	if len(summary.RecentActivity) != 1 {
		t.Fatalf("expected 1 activity entry, got %d", len(summary.RecentActivity))
	}
}
