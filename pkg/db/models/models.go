package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradedeskhq/tradedesk-backend/pkg/enums"
)

// Product is a catalog item available for quoting.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Code        string          `gorm:"size:64;uniqueIndex;not null"`
	Name        string          `gorm:"size:255;not null;index"`
	Description string          `gorm:"type:text"`
	Category    string          `gorm:"size:128;index"`
	Subgroup    string          `gorm:"size:128"`
	Quantity    int             `gorm:"not null;default:0"`
	Price       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	ImageURL    string          `gorm:"size:1024"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Quotation is a priced offer prepared for a customer. Total is always
// recomputed server-side from the items.
type Quotation struct {
	ID              uuid.UUID             `gorm:"type:uuid;primaryKey"`
	Number          string                `gorm:"size:32;uniqueIndex;not null"`
	CustomerName    string                `gorm:"size:255;not null"`
	CustomerPhone   string                `gorm:"size:64"`
	CustomerEmail   string                `gorm:"size:255"`
	CustomerAddress string                `gorm:"size:512"`
	DeliveryCharge  decimal.Decimal       `gorm:"type:numeric(14,2);not null;default:0"`
	Total           decimal.Decimal       `gorm:"type:numeric(14,2);not null"`
	Status          enums.QuotationStatus `gorm:"size:32;not null;index"`
	Notes           string                `gorm:"type:text"`
	CreatedByID     uuid.UUID             `gorm:"type:uuid;index"`
	CreatedBy       *User                 `gorm:"foreignKey:CreatedByID"`
	Items           []QuotationItem       `gorm:"foreignKey:QuotationID"`
	SentAt          *time.Time
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time
}

func (Quotation) TableName() string { return "quotations" }

func (q *Quotation) BeforeCreate(_ *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// QuotationItem is a line on a quotation. Name and unit price are
// snapshotted at creation so later catalog edits do not rewrite history.
type QuotationItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	QuotationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index"`
	ProductName string          `gorm:"size:255;not null"`
	ProductCode string          `gorm:"size:64"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CreatedAt   time.Time
}

func (QuotationItem) TableName() string { return "quotation_items" }

func (i *QuotationItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// User is a staff account. Roles are defined in pkg/enums.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name         string         `gorm:"size:255;not null"`
	Email        string         `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string         `gorm:"size:512;not null"`
	Role         enums.UserRole `gorm:"size:32;not null"`
	Active       bool           `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// ActivityLog is an append-only audit record. Writes are fire-and-forget
// so a logging failure never fails the audited operation.
type ActivityLog struct {
	ID        uuid.UUID             `gorm:"type:uuid;primaryKey"`
	ActorID   *uuid.UUID            `gorm:"type:uuid;index"`
	ActorName string                `gorm:"size:255"`
	Action    enums.ActivityAction  `gorm:"size:64;not null;index"`
	Outcome   enums.ActivityOutcome `gorm:"size:16;not null"`
	EntityID  *uuid.UUID            `gorm:"type:uuid;index"`
	Detail    string                `gorm:"type:text"`
	CreatedAt time.Time             `gorm:"index"`
}

func (ActivityLog) TableName() string { return "activity_logs" }

func (a *ActivityLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// All lists every model for auto-migration in dev and tests.
func All() []any {
	return []any{
		&Product{},
		&Quotation{},
		&QuotationItem{},
		&User{},
		&ActivityLog{},
	}
}
