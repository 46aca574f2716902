package quotation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradedeskhq/tradedesk-backend/pkg/db/models"
	"github.com/tradedeskhq/tradedesk-backend/pkg/enums"
	"github.com/tradedeskhq/tradedesk-backend/pkg/pagination"
)

// Repository wires together quotation persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the quotation with its items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	var quotation models.Quotation
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&quotation, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

// Create inserts the quotation together with its items.
func (r *Repository) Create(ctx context.Context, quotation *models.Quotation) (*models.Quotation, error) {
	if err := r.db.WithContext(ctx).Create(quotation).Error; err != nil {
		return nil, err
	}
	return quotation, nil
}

// Update saves the quotation row without touching items.
func (r *Repository) Update(ctx context.Context, quotation *models.Quotation) (*models.Quotation, error) {
	if err := r.db.WithContext(ctx).Omit("Items").Save(quotation).Error; err != nil {
		return nil, err
	}
	return quotation, nil
}

// NextNumber derives the next sequential quotation number. The numeric
// suffix scan is portable across postgres and the sqlite test driver.
func (r *Repository) NextNumber(ctx context.Context) (string, error) {
	var maxSeq int64
	err := r.db.WithContext(ctx).
		Raw("SELECT COALESCE(MAX(CAST(SUBSTR(number, 4) AS INTEGER)), 0) FROM quotations").
		Scan(&maxSeq).
		Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("QT-%04d", maxSeq+1), nil
}

// ListFilter narrows the quotation listing.
type ListFilter struct {
	Status       enums.QuotationStatus
	CustomerName string
}

// List returns a page of quotations ordered by created_at/id descending.
// It fetches one extra row to detect whether a next page exists.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Quotation, error) {
	query := r.db.WithContext(ctx).Model(&models.Quotation{}).Preload("Items")

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CustomerName != "" {
		query = query.Where("LOWER(customer_name) LIKE ?", "%"+filter.CustomerName+"%")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var quotations []models.Quotation
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&quotations).
		Error
	if err != nil {
		return nil, err
	}
	return quotations, nil
}

// Delete removes the quotation and its items.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("quotation_id = ?", id).
		Delete(&models.QuotationItem{}).
		Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.Quotation{}, "id = ?", id).Error
}

// CountByStatus returns the number of quotations in the given status.
func (r *Repository) CountByStatus(ctx context.Context, status enums.QuotationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Quotation{}).
		Where("status = ?", status).
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SumTotalByStatus returns the summed quotation total for the status.
func (r *Repository) SumTotalByStatus(ctx context.Context, status enums.QuotationStatus) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.Quotation{}).
		Where("status = ?", status).
		Select("COALESCE(SUM(total), 0)").
		Scan(&sum).
		Error
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// Count returns the total number of quotations.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Quotation{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
