package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tradedeskhq/tradedesk-backend/api/middleware"
	"github.com/tradedeskhq/tradedesk-backend/api/responses"
	"github.com/tradedeskhq/tradedesk-backend/api/validators"
	"github.com/tradedeskhq/tradedesk-backend/internal/activity"
	user "github.com/tradedeskhq/tradedesk-backend/internal/users"
	"github.com/tradedeskhq/tradedesk-backend/pkg/enums"
	pkgerrors "github.com/tradedeskhq/tradedesk-backend/pkg/errors"
	"github.com/tradedeskhq/tradedesk-backend/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

func AuthLogin(svc user.Service, recorder *activity.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), payload.Email, payload.Password)
		if err != nil {
			if recorder != nil {
				recorder.Record(r.Context(), activity.Entry{
					Action:  enums.ActivityActionLogin,
					Outcome: enums.ActivityOutcomeFailure,
					Detail:  "login rejected",
				})
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if recorder != nil {
			recorder.Record(r.Context(), activity.Entry{
				ActorID:   &result.User.ID,
				ActorName: result.User.Name,
				Action:    enums.ActivityActionLogin,
			})
		}
		responses.WriteSuccess(w, result)
	}
}

func AuthRefresh(svc user.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload refreshRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Refresh(r.Context(), payload.AccessToken, payload.RefreshToken)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AuthLogout(svc user.Service, recorder *activity.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessID := middleware.AccessIDFromContext(r.Context())
		if err := svc.Logout(r.Context(), accessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if recorder != nil {
			entry := activity.Entry{Action: enums.ActivityActionLogout}
			if actorID, ok := actorFromContext(r); ok {
				entry.ActorID = &actorID
			}
			recorder.Record(r.Context(), entry)
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged out"})
	}
}

func AuthChangePassword(svc user.Service, recorder *activity.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := actorFromContext(r)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload changePasswordRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ChangePassword(r.Context(), actorID, payload.CurrentPassword, payload.NewPassword); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordActivity(r, recorder, enums.ActivityActionUserUpdated, actorID, "password changed")
		responses.WriteSuccess(w, map[string]string{"status": "password changed"})
	}
}

func AuthMe(svc user.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := actorFromContext(r)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		dto, err := svc.GetUser(r.Context(), actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// actorFromContext parses the authenticated user ID seeded by the auth
// middleware.
func actorFromContext(r *http.Request) (uuid.UUID, bool) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
