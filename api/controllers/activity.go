package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tradedeskhq/tradedesk-backend/api/responses"
	"github.com/tradedeskhq/tradedesk-backend/api/validators"
	"github.com/tradedeskhq/tradedesk-backend/internal/activity"
	pkgerrors "github.com/tradedeskhq/tradedesk-backend/pkg/errors"
	"github.com/tradedeskhq/tradedesk-backend/pkg/logger"
)

func ListActivity(recorder *activity.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := activity.ListInput{
			Action: r.URL.Query().Get("action"),
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}
		if raw := r.URL.Query().Get("actor_id"); raw != "" {
			actorID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor id"))
				return
			}
			input.ActorID = &actorID
		}

		result, err := recorder.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
