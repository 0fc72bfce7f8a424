package controllers

import (
	"net/http"

	"github.com/lynk-ai/lynk-backend/api/responses"
	"github.com/lynk-ai/lynk-backend/internal/systemmetrics"
	"github.com/lynk-ai/lynk-backend/pkg/logger"
)

func IncrementAgentCount(svc systemmetrics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := svc.IncrementAgentCount(r.Context())
		if err != nil {
			responses.WriteDetail(r.Context(), logg, w, http.StatusInternalServerError, "Error updating agent count", err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, count)
	}
}
