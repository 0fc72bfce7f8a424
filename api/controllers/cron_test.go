package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lynk-ai/lynk-backend/internal/cronjobs"
	"github.com/lynk-ai/lynk-backend/pkg/db/models"
	pkgerrors "github.com/lynk-ai/lynk-backend/pkg/errors"
	"github.com/lynk-ai/lynk-backend/pkg/pagination"
)

type testCronService struct {
	createFn  func(ctx context.Context, input cronjobs.CreateInput) (*models.CronJob, error)
	getFn     func(ctx context.Context, id uuid.UUID) (*models.CronJob, error)
	updateFn  func(ctx context.Context, id uuid.UUID, input cronjobs.UpdateInput) (*models.CronJob, error)
	deleteFn  func(ctx context.Context, id uuid.UUID) error
	executeFn func(ctx context.Context, id uuid.UUID) (*models.CronJob, error)
}

func (s *testCronService) Create(ctx context.Context, input cronjobs.CreateInput) (*models.CronJob, error) {
	return s.createFn(ctx, input)
}

func (s *testCronService) Get(ctx context.Context, id uuid.UUID) (*models.CronJob, error) {
	return s.getFn(ctx, id)
}

func (s *testCronService) List(context.Context, pagination.Params) ([]models.CronJob, error) {
	return nil, nil
}

func (s *testCronService) Update(ctx context.Context, id uuid.UUID, input cronjobs.UpdateInput) (*models.CronJob, error) {
	return s.updateFn(ctx, id, input)
}

func (s *testCronService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

func (s *testCronService) Execute(ctx context.Context, id uuid.UUID) (*models.CronJob, error) {
	return s.executeFn(ctx, id)
}

func TestCronExecute(t *testing.T) {
	id := uuid.New()
	ranAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := &testCronService{
		executeFn: func(_ context.Context, got uuid.UUID) (*models.CronJob, error) {
			if got != id {
				t.Fatalf("unexpected id %s", got)
			}
			return &models.CronJob{ID: id, Name: "nightly-digest", Schedule: "0 2 * * *", LastRun: &ranAt, Active: true}, nil
		},
	}
	req := withRouteParam(httptest.NewRequest(http.MethodPost, "/cron/"+id.String()+"/execute", nil), cronJobIDParam, id.String())
	resp := httptest.NewRecorder()
	CronExecute(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var body struct {
		Message string         `json:"message"`
		Job     models.CronJob `json:"job"`
	}
	decodeBody(t, resp, &body)
	if body.Message != "Cron job 'nightly-digest' executed successfully" {
		t.Fatalf("unexpected message %q", body.Message)
	}
	if body.Job.LastRun == nil || !body.Job.LastRun.Equal(ranAt) {
		t.Fatalf("unexpected last_run %v", body.Job.LastRun)
	}
}

func TestCronExecuteAlreadyRunning(t *testing.T) {
	id := uuid.New()
	svc := &testCronService{
		executeFn: func(context.Context, uuid.UUID) (*models.CronJob, error) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "cron job is already executing")
		},
	}
	req := withRouteParam(httptest.NewRequest(http.MethodPost, "/cron/"+id.String()+"/execute", nil), cronJobIDParam, id.String())
	resp := httptest.NewRecorder()
	CronExecute(svc, testLogger())(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestCronGetInvalidID(t *testing.T) {
	req := withRouteParam(httptest.NewRequest(http.MethodGet, "/cron/xyz", nil), cronJobIDParam, "xyz")
	resp := httptest.NewRecorder()
	CronGet(&testCronService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Invalid job ID format") {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestCronCreateRequiresSchedule(t *testing.T) {
	svc := &testCronService{
		createFn: func(context.Context, cronjobs.CreateInput) (*models.CronJob, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	resp := httptest.NewRecorder()
	CronCreate(svc, testLogger())(resp, httptest.NewRequest(http.MethodPost, "/cron", strings.NewReader(`{"name":"nightly"}`)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCronDelete(t *testing.T) {
	id := uuid.New()
	svc := &testCronService{
		deleteFn: func(context.Context, uuid.UUID) error { return nil },
	}
	req := withRouteParam(httptest.NewRequest(http.MethodDelete, "/cron/"+id.String(), nil), cronJobIDParam, id.String())
	resp := httptest.NewRecorder()
	CronDelete(svc, testLogger())(resp, req)

	if !strings.Contains(resp.Body.String(), "Cron job deleted successfully") {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}
