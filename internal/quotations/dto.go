package quotation

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradedeskhq/tradedesk-backend/pkg/db/models"
)

// QuotationDTO is the quotation payload returned to clients.
type QuotationDTO struct {
	ID              uuid.UUID          `json:"id"`
	Number          string             `json:"number"`
	CustomerName    string             `json:"customer_name"`
	CustomerPhone   string             `json:"customer_phone,omitempty"`
	CustomerEmail   string             `json:"customer_email,omitempty"`
	CustomerAddress string             `json:"customer_address,omitempty"`
	DeliveryCharge  string             `json:"delivery_charge"`
	Total           string             `json:"total"`
	Status          string             `json:"status"`
	Notes           string             `json:"notes,omitempty"`
	Items           []QuotationItemDTO `json:"items"`
	SentAt          *time.Time         `json:"sent_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// QuotationItemDTO is one line on a quotation.
type QuotationItemDTO struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	ProductName string     `json:"product_name"`
	ProductCode string     `json:"product_code,omitempty"`
	Quantity    int        `json:"quantity"`
	UnitPrice   string     `json:"unit_price"`
	LineTotal   string     `json:"line_total"`
}

// QuotationListResult is a cursor page of quotations.
type QuotationListResult struct {
	Quotations []QuotationDTO `json:"quotations"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

func toQuotationDTO(m *models.Quotation) *QuotationDTO {
	if m == nil {
		return nil
	}
	items := make([]QuotationItemDTO, 0, len(m.Items))
	for _, item := range m.Items {
		items = append(items, QuotationItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductCode: item.ProductCode,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			LineTotal:   item.LineTotal.StringFixed(2),
		})
	}
	return &QuotationDTO{
		ID:              m.ID,
		Number:          m.Number,
		CustomerName:    m.CustomerName,
		CustomerPhone:   m.CustomerPhone,
		CustomerEmail:   m.CustomerEmail,
		CustomerAddress: m.CustomerAddress,
		DeliveryCharge:  m.DeliveryCharge.StringFixed(2),
		Total:           m.Total.StringFixed(2),
		Status:          m.Status.String(),
		Notes:           m.Notes,
		Items:           items,
		SentAt:          m.SentAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
