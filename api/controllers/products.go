package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradedeskhq/tradedesk-backend/api/responses"
	"github.com/tradedeskhq/tradedesk-backend/api/validators"
	"github.com/tradedeskhq/tradedesk-backend/internal/activity"
	product "github.com/tradedeskhq/tradedesk-backend/internal/products"
	"github.com/tradedeskhq/tradedesk-backend/pkg/enums"
	pkgerrors "github.com/tradedeskhq/tradedesk-backend/pkg/errors"
	"github.com/tradedeskhq/tradedesk-backend/pkg/logger"
)

type createProductRequest struct {
	Code        string `json:"code" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Subgroup    string `json:"subgroup,omitempty"`
	Quantity    int    `json:"quantity" validate:"min=0"`
	Price       string `json:"price" validate:"required"`
	ImageURL    string `json:"image_url,omitempty" validate:"omitempty,url"`
}

type updateProductRequest struct {
	Code        *string `json:"code,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Subgroup    *string `json:"subgroup,omitempty"`
	Quantity    *int    `json:"quantity,omitempty" validate:"omitempty,min=0"`
	Price       *string `json:"price,omitempty"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	return price, nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

func CreateProduct(svc product.Service, recorder *activity.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := parsePrice(payload.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CreateProduct(r.Context(), product.CreateProductInput{
			Code:        payload.Code,
			Name:        payload.Name,
			Description: payload.Description,
			Category:    payload.Category,
			Subgroup:    payload.Subgroup,
			Quantity:    payload.Quantity,
			Price:       price,
			ImageURL:    payload.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordActivity(r, recorder, enums.ActivityActionProductCreated, dto.ID, dto.Code)
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func UpdateProduct(svc product.Service, recorder *activity.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := product.UpdateProductInput{
			Code:        payload.Code,
			Name:        payload.Name,
			Description: payload.Description,
			Category:    payload.Category,
			Subgroup:    payload.Subgroup,
			Quantity:    payload.Quantity,
			ImageURL:    payload.ImageURL,
		}
		if payload.Price != nil {
			price, err := parsePrice(*payload.Price)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Price = &price
		}

		dto, err := svc.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordActivity(r, recorder, enums.ActivityActionProductUpdated, dto.ID, dto.Code)
		responses.WriteSuccess(w, dto)
	}
}

func DeleteProduct(svc product.Service, recorder *activity.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordActivity(r, recorder, enums.ActivityActionProductDeleted, productID, "")
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func GetProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ListProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(), product.ListProductsInput{
			Search:   r.URL.Query().Get("search"),
			Category: r.URL.Query().Get("category"),
			Limit:    limit,
			Cursor:   r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ListLowStockProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		threshold, err := validators.ParseQueryInt(r, "threshold", 0, 0, 1000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dtos, err := svc.ListLowStock(r.Context(), threshold)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"products": dtos})
	}
}

// recordActivity audits a successful mutation using the actor seeded by
// the auth middleware. Recording failures never surface to the client.
func recordActivity(r *http.Request, recorder *activity.Recorder, action enums.ActivityAction, entityID uuid.UUID, detail string) {
	if recorder == nil {
		return
	}
	entry := activity.Entry{Action: action, Detail: detail}
	if entityID != uuid.Nil {
		entry.EntityID = &entityID
	}
	if actorID, ok := actorFromContext(r); ok {
		entry.ActorID = &actorID
	}
	recorder.Record(r.Context(), entry)
}
