package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradedeskhq/tradedesk-backend/api/responses"
	"github.com/tradedeskhq/tradedesk-backend/api/validators"
	"github.com/tradedeskhq/tradedesk-backend/internal/activity"
	quotation "github.com/tradedeskhq/tradedesk-backend/internal/quotations"
	"github.com/tradedeskhq/tradedesk-backend/pkg/enums"
	pkgerrors "github.com/tradedeskhq/tradedesk-backend/pkg/errors"
	"github.com/tradedeskhq/tradedesk-backend/pkg/logger"
)

type createQuotationItemRequest struct {
	ProductID *string `json:"product_id,omitempty"`
	Name      string  `json:"name,omitempty"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
	UnitPrice *string `json:"unit_price,omitempty"`
}

type createQuotationRequest struct {
	CustomerName    string                       `json:"customer_name" validate:"required"`
	CustomerPhone   string                       `json:"customer_phone,omitempty"`
	CustomerEmail   string                       `json:"customer_email,omitempty" validate:"omitempty,email"`
	CustomerAddress string                       `json:"customer_address,omitempty"`
	DeliveryCharge  string                       `json:"delivery_charge,omitempty"`
	Notes           string                       `json:"notes,omitempty"`
	Total           *string                      `json:"total,omitempty"`
	Items           []createQuotationItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (req createQuotationRequest) toInput(createdBy uuid.UUID) (quotation.CreateQuotationInput, error) {
	input := quotation.CreateQuotationInput{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
		Notes:           req.Notes,
		CreatedByID:     createdBy,
	}

	if req.DeliveryCharge != "" {
		charge, err := decimal.NewFromString(req.DeliveryCharge)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery charge")
		}
		input.DeliveryCharge = charge
	}
	if req.Total != nil {
		total, err := decimal.NewFromString(*req.Total)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid total")
		}
		input.Total = &total
	}

	input.Items = make([]quotation.CreateQuotationItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		in := quotation.CreateQuotationItemInput{
			Name:     item.Name,
			Quantity: item.Quantity,
		}
		if item.ProductID != nil {
			id, err := uuid.Parse(*item.ProductID)
			if err != nil {
				return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
			}
			in.ProductID = &id
		}
		if item.UnitPrice != nil {
			price, err := decimal.NewFromString(*item.UnitPrice)
			if err != nil {
				return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit price")
			}
			in.UnitPrice = &price
		}
		input.Items = append(input.Items, in)
	}
	return input, nil
}

func CreateQuotation(svc quotation.Service, recorder *activity.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := actorFromContext(r)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload createQuotationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CreateQuotation(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordActivity(r, recorder, enums.ActivityActionQuotationCreated, dto.ID, dto.Number)
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func DeleteQuotation(svc quotation.Service, recorder *activity.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quotationID, err := pathID(r, "quotationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.DeleteQuotation(r.Context(), quotationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordActivity(r, recorder, enums.ActivityActionQuotationDeleted, dto.ID, dto.Number)
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func GetQuotation(svc quotation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quotationID, err := pathID(r, "quotationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetQuotation(r.Context(), quotationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ListQuotations(svc quotation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListQuotations(r.Context(), quotation.ListQuotationsInput{
			Status:       r.URL.Query().Get("status"),
			CustomerName: r.URL.Query().Get("customer"),
			Limit:        limit,
			Cursor:       r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func MarkQuotationSent(svc quotation.Service, recorder *activity.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quotationID, err := pathID(r, "quotationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.MarkSent(r.Context(), quotationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordActivity(r, recorder, enums.ActivityActionQuotationSent, dto.ID, dto.Number)
		responses.WriteSuccess(w, dto)
	}
}

func CancelQuotation(svc quotation.Service, recorder *activity.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quotationID, err := pathID(r, "quotationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Cancel(r.Context(), quotationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordActivity(r, recorder, enums.ActivityActionQuotationCancel, dto.ID, dto.Number)
		responses.WriteSuccess(w, dto)
	}
}
