package controllers

import (
	"net/http"

	"github.com/tradedeskhq/tradedesk-backend/api/responses"
	"github.com/tradedeskhq/tradedesk-backend/internal/dashboard"
	"github.com/tradedeskhq/tradedesk-backend/pkg/logger"
)

func DashboardSummary(svc *dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summarize(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
