package quotation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradedeskhq/tradedesk-backend/pkg/db"
	"github.com/tradedeskhq/tradedesk-backend/pkg/db/models"
	"github.com/tradedeskhq/tradedesk-backend/pkg/enums"
	pkgerrors "github.com/tradedeskhq/tradedesk-backend/pkg/errors"
	"github.com/tradedeskhq/tradedesk-backend/pkg/logger"
	"github.com/tradedeskhq/tradedesk-backend/pkg/pagination"
)

// Service exposes quotation lifecycle operations.
type Service interface {
	CreateQuotation(ctx context.Context, input CreateQuotationInput) (*QuotationDTO, error)
	GetQuotation(ctx context.Context, quotationID uuid.UUID) (*QuotationDTO, error)
	ListQuotations(ctx context.Context, input ListQuotationsInput) (*QuotationListResult, error)
	MarkSent(ctx context.Context, quotationID uuid.UUID) (*QuotationDTO, error)
	Cancel(ctx context.Context, quotationID uuid.UUID) (*QuotationDTO, error)
	DeleteQuotation(ctx context.Context, quotationID uuid.UUID) (*QuotationDTO, error)
}

// CreateQuotationItemInput is one requested line. When ProductID is set
// the product's name, code and price are snapshotted at creation; a line
// without a product must carry its own name and unit price.
type CreateQuotationItemInput struct {
	ProductID *uuid.UUID
	Name      string
	Quantity  int
	UnitPrice *decimal.Decimal
}

// CreateQuotationInput holds the validated payload to create a quotation.
type CreateQuotationInput struct {
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	CustomerAddress string
	DeliveryCharge  decimal.Decimal
	Notes           string
	Total           *decimal.Decimal
	Items           []CreateQuotationItemInput
	CreatedByID     uuid.UUID
}

// ListQuotationsInput captures listing filters and pagination.
type ListQuotationsInput struct {
	Status       string
	CustomerName string
	Limit        int
	Cursor       string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     *Repository
	products productResolver
	tx       txRunner
	logg     *logger.Logger
}

var _ txRunner = (*db.Client)(nil)

// NewService constructs a quotation service instance.
func NewService(repo *Repository, products productResolver, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quotation repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product resolver required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, products: products, tx: tx, logg: logg}, nil
}

func (s *service) CreateQuotation(ctx context.Context, input CreateQuotationInput) (*QuotationDTO, error) {
	customerName := strings.TrimSpace(input.CustomerName)
	if customerName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	if input.DeliveryCharge.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery charge cannot be negative")
	}

	items, err := s.buildItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	total := input.DeliveryCharge
	for _, item := range items {
		total = total.Add(item.LineTotal)
	}
	if input.Total != nil && !input.Total.Equal(total) && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf(
			"client-supplied total %s ignored, recomputed %s",
			input.Total.StringFixed(2), total.StringFixed(2),
		))
	}

	quotation := &models.Quotation{
		CustomerName:    customerName,
		CustomerPhone:   strings.TrimSpace(input.CustomerPhone),
		CustomerEmail:   strings.TrimSpace(input.CustomerEmail),
		CustomerAddress: strings.TrimSpace(input.CustomerAddress),
		DeliveryCharge:  input.DeliveryCharge,
		Total:           total,
		Status:          enums.QuotationStatusPending,
		Notes:           strings.TrimSpace(input.Notes),
		CreatedByID:     input.CreatedByID,
		Items:           items,
	}

	// Two concurrent creates can read the same MAX and collide on the
	// unique number index, so the allocate-and-insert runs under a
	// short retry that re-reads the sequence on a duplicate.
	backoff := retry.WithMaxRetries(numberRetryAttempts, retry.NewConstant(numberRetryBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			number, err := repo.NextNumber(ctx)
			if err != nil {
				return fmt.Errorf("allocating quotation number: %w", err)
			}
			quotation.Number = number
			_, err = repo.Create(ctx, quotation)
			return err
		})
		if isDuplicateNumber(txErr) {
			return retry.RetryableError(txErr)
		}
		return txErr
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating quotation")
	}
	return toQuotationDTO(quotation), nil
}

const (
	numberRetryAttempts = 3
	numberRetryBackoff  = 25 * time.Millisecond
)

// isDuplicateNumber reports whether the insert lost the race for the
// unique quotation number, across the postgres and sqlite drivers.
func isDuplicateNumber(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}

// buildItems validates each requested line and snapshots catalog data.
func (s *service) buildItems(ctx context.Context, inputs []CreateQuotationItemInput) ([]models.QuotationItem, error) {
	items := make([]models.QuotationItem, 0, len(inputs))
	for i, in := range inputs {
		if in.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: quantity must be positive", i))
		}
		if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: unit price cannot be negative", i))
		}

		item := models.QuotationItem{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
		}

		switch {
		case in.ProductID != nil:
			product, err := s.products.FindByID(ctx, *in.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: product not found", i))
				}
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving product")
			}
			item.ProductName = product.Name
			item.ProductCode = product.Code
			item.UnitPrice = product.Price
			if in.UnitPrice != nil {
				item.UnitPrice = *in.UnitPrice
			}
		default:
			name := strings.TrimSpace(in.Name)
			if name == "" {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: name required for custom line", i))
			}
			if in.UnitPrice == nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: unit price required for custom line", i))
			}
			item.ProductName = name
			item.UnitPrice = *in.UnitPrice
		}

		item.LineTotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
		items = append(items, item)
	}
	return items, nil
}

func (s *service) GetQuotation(ctx context.Context, quotationID uuid.UUID) (*QuotationDTO, error) {
	model, err := s.findQuotation(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	return toQuotationDTO(model), nil
}

func (s *service) ListQuotations(ctx context.Context, input ListQuotationsInput) (*QuotationListResult, error) {
	filter := ListFilter{CustomerName: strings.ToLower(strings.TrimSpace(input.CustomerName))}
	if input.Status != "" {
		status, err := enums.ParseQuotationStatus(input.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		filter.Status = status
	}

	params := pagination.Params{Limit: input.Limit, Cursor: input.Cursor}
	rows, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing quotations")
	}

	limit := pagination.NormalizeLimit(input.Limit)
	result := &QuotationListResult{Quotations: make([]QuotationDTO, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for i := range rows {
		result.Quotations = append(result.Quotations, *toQuotationDTO(&rows[i]))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

func (s *service) MarkSent(ctx context.Context, quotationID uuid.UUID) (*QuotationDTO, error) {
	model, err := s.findQuotation(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	if model.Status != enums.QuotationStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending quotations can be sent").
			WithDetails(map[string]any{"status": model.Status.String()})
	}

	now := time.Now().UTC()
	model.Status = enums.QuotationStatusSent
	model.SentAt = &now
	updated, err := s.repo.Update(ctx, model)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking quotation sent")
	}
	return toQuotationDTO(updated), nil
}

func (s *service) Cancel(ctx context.Context, quotationID uuid.UUID) (*QuotationDTO, error) {
	model, err := s.findQuotation(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	if model.Status != enums.QuotationStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending quotations can be cancelled").
			WithDetails(map[string]any{"status": model.Status.String()})
	}

	model.Status = enums.QuotationStatusCancelled
	updated, err := s.repo.Update(ctx, model)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancelling quotation")
	}
	return toQuotationDTO(updated), nil
}

// DeleteQuotation removes a quotation of any status together with its
// items. It returns the deleted record so callers can audit the number.
func (s *service) DeleteQuotation(ctx context.Context, quotationID uuid.UUID) (*QuotationDTO, error) {
	model, err := s.findQuotation(ctx, quotationID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, quotationID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting quotation")
	}
	return toQuotationDTO(model), nil
}

func (s *service) findQuotation(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	model, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading quotation")
	}
	return model, nil
}
