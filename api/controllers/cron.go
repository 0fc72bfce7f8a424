package controllers

import (
	"fmt"
	"net/http"

	"github.com/lynk-ai/lynk-backend/api/responses"
	"github.com/lynk-ai/lynk-backend/api/validators"
	"github.com/lynk-ai/lynk-backend/internal/cronjobs"
	"github.com/lynk-ai/lynk-backend/pkg/db/models"
	pkgerrors "github.com/lynk-ai/lynk-backend/pkg/errors"
	"github.com/lynk-ai/lynk-backend/pkg/logger"
)

const cronJobIDParam = "jobId"

type cronExecuteResponse struct {
	Message string          `json:"message"`
	Job     *models.CronJob `json:"job"`
}

func CronList(svc cronjobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cron service unavailable"))
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if rows == nil {
			rows = []models.CronJob{}
		}
		responses.WriteJSON(w, http.StatusOK, rows)
	}
}

func CronGet(svc cronjobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, cronJobIDParam, "job")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		job, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, job)
	}
}

func CronCreate(svc cronjobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input cronjobs.CreateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		job, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, job)
	}
}

func CronUpdate(svc cronjobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, cronJobIDParam, "job")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input cronjobs.UpdateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		job, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, job)
	}
}

func CronDelete(svc cronjobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, cronJobIDParam, "job")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, map[string]string{"message": "Cron job deleted successfully"})
	}
}

// CronExecute records a manual run; nothing is scheduled.
func CronExecute(svc cronjobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, cronJobIDParam, "job")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		job, err := svc.Execute(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, cronExecuteResponse{
			Message: fmt.Sprintf("Cron job '%s' executed successfully", job.Name),
			Job:     job,
		})
	}
}
