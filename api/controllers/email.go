package controllers

import (
	"net/http"

	"github.com/lynk-ai/lynk-backend/api/responses"
	"github.com/lynk-ai/lynk-backend/api/validators"
	"github.com/lynk-ai/lynk-backend/internal/email"
	pkgerrors "github.com/lynk-ai/lynk-backend/pkg/errors"
	"github.com/lynk-ai/lynk-backend/pkg/logger"
)

const maxSubjectLength = 998

// EmailSend queues a templated email; delivery happens in the background.
func EmailSend(svc email.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "email service unavailable"))
			return
		}
		var req email.SendRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		req.Subject = validators.SanitizeHeader(req.Subject, maxSubjectLength)
		req.TemplateName = validators.SanitizeString(req.TemplateName, 0)

		result, err := svc.Enqueue(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, result)
	}
}
