package activity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradedeskhq/tradedesk-backend/pkg/db/models"
	"github.com/tradedeskhq/tradedesk-backend/pkg/enums"
	"github.com/tradedeskhq/tradedesk-backend/pkg/pagination"
)

// Repository persists and queries activity log entries.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends one activity log entry.
func (r *Repository) Insert(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListFilter narrows the activity listing.
type ListFilter struct {
	ActorID *uuid.UUID
	Action  enums.ActivityAction
}

// List returns a page of entries, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.ActivityLog, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{})

	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
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

	var entries []models.ActivityLog
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&entries).
		Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Recent returns the newest n entries without cursor bookkeeping.
func (r *Repository) Recent(ctx context.Context, n int) ([]models.ActivityLog, error) {
	if n <= 0 {
		n = 10
	}
	var entries []models.ActivityLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(n).
		Find(&entries).
		Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
