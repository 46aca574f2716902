package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tradedeskhq/tradedesk-backend/internal/activity"
	product "github.com/tradedeskhq/tradedesk-backend/internal/products"
	quotation "github.com/tradedeskhq/tradedesk-backend/internal/quotations"
	"github.com/tradedeskhq/tradedesk-backend/pkg/enums"
	pkgerrors "github.com/tradedeskhq/tradedesk-backend/pkg/errors"
)

const recentActivityCount = 10

// Summary is the landing page aggregate.
type Summary struct {
	ProductCount        int64                `json:"product_count"`
	QuotationCount      int64                `json:"quotation_count"`
	PendingQuotations   int64                `json:"pending_quotations"`
	SentQuotations      int64                `json:"sent_quotations"`
	CancelledQuotations int64                `json:"cancelled_quotations"`
	PendingTotal        string               `json:"pending_total"`
	SentTotal           string               `json:"sent_total"`
	LowStock            []product.ProductDTO `json:"low_stock"`
	RecentActivity      []activity.EntryDTO  `json:"recent_activity"`
}

type productReader interface {
	ListLowStock(ctx context.Context, threshold int) ([]product.ProductDTO, error)
}

type activityReader interface {
	Recent(ctx context.Context, n int) ([]activity.EntryDTO, error)
}

// Service aggregates counts and feeds for the dashboard.
type Service struct {
	products   *product.Repository
	quotations *quotation.Repository
	catalog    productReader
	feed       activityReader
}

// NewService constructs the dashboard aggregator.
func NewService(products *product.Repository, quotations *quotation.Repository, catalog productReader, feed activityReader) (*Service, error) {
	if products == nil || quotations == nil {
		return nil, fmt.Errorf("product and quotation repositories required")
	}
	if catalog == nil || feed == nil {
		return nil, fmt.Errorf("catalog and activity readers required")
	}
	return &Service{products: products, quotations: quotations, catalog: catalog, feed: feed}, nil
}

// Summarize runs the independent aggregate queries concurrently.
func (s *Service) Summarize(ctx context.Context) (*Summary, error) {
	var summary Summary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		summary.ProductCount, err = s.products.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.QuotationCount, err = s.quotations.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.PendingQuotations, err = s.quotations.CountByStatus(gctx, enums.QuotationStatusPending)
		return err
	})
	g.Go(func() (err error) {
		summary.SentQuotations, err = s.quotations.CountByStatus(gctx, enums.QuotationStatusSent)
		return err
	})
	g.Go(func() (err error) {
		summary.CancelledQuotations, err = s.quotations.CountByStatus(gctx, enums.QuotationStatusCancelled)
		return err
	})
	g.Go(func() error {
		total, err := s.quotations.SumTotalByStatus(gctx, enums.QuotationStatusPending)
		if err != nil {
			return err
		}
		summary.PendingTotal = total.StringFixed(2)
		return nil
	})
	g.Go(func() error {
		total, err := s.quotations.SumTotalByStatus(gctx, enums.QuotationStatusSent)
		if err != nil {
			return err
		}
		summary.SentTotal = total.StringFixed(2)
		return nil
	})
	g.Go(func() (err error) {
		summary.LowStock, err = s.catalog.ListLowStock(gctx, product.DefaultLowStockThreshold)
		return err
	})
	g.Go(func() (err error) {
		summary.RecentActivity, err = s.feed.Recent(gctx, recentActivityCount)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building dashboard summary")
	}
	return &summary, nil
}
