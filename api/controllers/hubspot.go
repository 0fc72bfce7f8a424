package controllers

import (
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/lynk-ai/lynk-backend/api/responses"
	"github.com/lynk-ai/lynk-backend/api/validators"
	"github.com/lynk-ai/lynk-backend/internal/hubspot"
	pkgerrors "github.com/lynk-ai/lynk-backend/pkg/errors"
	"github.com/lynk-ai/lynk-backend/pkg/logger"
)

const (
	hubspotSignatureHeader = "X-HubSpot-Signature"
	maxWebhookBodyBytes    = 5 << 20
	webhookErrorPrefix     = "Error processing webhook"
)

// HubSpotWebhook records a CRM notification. Only a failure to log the event
// yields a non-200 response.
func HubSpotWebhook(svc hubspot.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteDetail(r.Context(), logg, w, http.StatusInternalServerError, webhookErrorPrefix, fmt.Errorf("hubspot service unavailable"))
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
		if err != nil {
			responses.WriteDetail(r.Context(), logg, w, http.StatusInternalServerError, webhookErrorPrefix, err)
			return
		}

		result, err := svc.HandleWebhook(r.Context(), body, r.Header.Get(hubspotSignatureHeader))
		if err != nil {
			responses.WriteDetail(r.Context(), logg, w, http.StatusInternalServerError, webhookErrorPrefix, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, result)
	}
}

func HubSpotContacts(svc hubspot.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "hubspot service unavailable"))
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListContacts(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, result)
	}
}

// HubSpotSyncContacts runs a bulk sync in the request; ?limit=N caps it.
func HubSpotSyncContacts(svc hubspot.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "hubspot service unavailable"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, math.MaxInt32)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.SyncContacts(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, result)
	}
}
