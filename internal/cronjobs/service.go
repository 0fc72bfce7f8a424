package cronjobs

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lynk-ai/lynk-backend/internal/locks"
	"github.com/lynk-ai/lynk-backend/pkg/db"
	"github.com/lynk-ai/lynk-backend/pkg/db/models"
	pkgerrors "github.com/lynk-ai/lynk-backend/pkg/errors"
	"github.com/lynk-ai/lynk-backend/pkg/logger"
	"github.com/lynk-ai/lynk-backend/pkg/metrics"
	"github.com/lynk-ai/lynk-backend/pkg/pagination"
	"github.com/robfig/cron/v3"
)

// Service manages stored cron job definitions. Jobs are never run on a timer;
// Execute only records a manual run.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.CronJob, error)
	Get(ctx context.Context, id uuid.UUID) (*models.CronJob, error)
	List(ctx context.Context, params pagination.Params) ([]models.CronJob, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.CronJob, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Execute(ctx context.Context, id uuid.UUID) (*models.CronJob, error)
}

type CreateInput struct {
	Name        string     `json:"name" validate:"required"`
	Description *string    `json:"description"`
	Schedule    string     `json:"schedule" validate:"required"`
	LastRun     *time.Time `json:"last_run"`
	NextRun     *time.Time `json:"next_run"`
	Active      *bool      `json:"active"`
}

type UpdateInput struct {
	Name        *string    `json:"name" validate:"omitempty,min=1"`
	Description *string    `json:"description"`
	Schedule    *string    `json:"schedule" validate:"omitempty,min=1"`
	LastRun     *time.Time `json:"last_run"`
	NextRun     *time.Time `json:"next_run"`
	Active      *bool      `json:"active"`
}

// Locker guards Execute so one job id is never run twice concurrently.
type Locker interface {
	TryLock(ctx context.Context, id string) (func(), error)
}

type ServiceParams struct {
	Repo    Repository
	Locker  Locker
	Metrics *metrics.CronJobMetrics
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	repo    Repository
	locker  Locker
	metrics *metrics.CronJobMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cron jobs repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:    params.Repo,
		locker:  params.Locker,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     now,
	}, nil
}

// ParseSchedule accepts standard five-field expressions and descriptors such as @daily.
func ParseSchedule(expr string) (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(strings.TrimSpace(expr))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cron schedule").
			WithDetails(map[string]any{"schedule": expr})
	}
	return schedule, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.CronJob, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	schedule, err := ParseSchedule(input.Schedule)
	if err != nil {
		return nil, err
	}

	job := &models.CronJob{
		Name:        name,
		Description: input.Description,
		Schedule:    strings.TrimSpace(input.Schedule),
		LastRun:     input.LastRun,
		NextRun:     input.NextRun,
		Active:      true,
	}
	if input.Active != nil {
		job.Active = *input.Active
	}
	if job.NextRun == nil && job.Active {
		next := schedule.Next(s.now())
		job.NextRun = &next
	}

	if err := s.repo.Create(ctx, job); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cron job")
	}
	return job, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.CronJob, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Cron job not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get cron job")
	}
	return job, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]models.CronJob, error) {
	jobs, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cron jobs")
	}
	return jobs, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.CronJob, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Schedule != nil {
		schedule, err := ParseSchedule(*input.Schedule)
		if err != nil {
			return nil, err
		}
		updates["schedule"] = strings.TrimSpace(*input.Schedule)
		if input.NextRun == nil {
			updates["next_run"] = schedule.Next(s.now())
		}
	}
	if input.LastRun != nil {
		updates["last_run"] = input.LastRun.UTC()
	}
	if input.NextRun != nil {
		updates["next_run"] = input.NextRun.UTC()
	}
	if input.Active != nil {
		updates["active"] = *input.Active
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Cron job not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cron job")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cron job")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Cron job not found")
	}
	return nil
}

// Execute records a manual run: last_run becomes now and next_run is recomputed.
func (s *service) Execute(ctx context.Context, id uuid.UUID) (*models.CronJob, error) {
	ctx = s.logg.WithField(ctx, "cron_job_id", id.String())

	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.locker != nil {
		unlock, err := s.locker.TryLock(ctx, id.String())
		if err != nil {
			if errors.Is(err, locks.ErrNotAcquired) {
				s.metrics.IncSkipped(job.Name)
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "cron job is already executing")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire cron job lock")
		}
		defer unlock()
	}

	start := s.now()
	updates := map[string]any{"last_run": start}
	if schedule, err := ParseSchedule(job.Schedule); err == nil {
		updates["next_run"] = schedule.Next(start)
	} else {
		s.logg.Warn(ctx, "stored cron schedule no longer parses; next_run left unchanged")
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		s.metrics.IncFailure(job.Name)
		s.logg.Error(ctx, "cron job execution failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record cron job run")
	}
	s.metrics.ObserveDuration(job.Name, s.now().Sub(start))
	s.metrics.IncSuccess(job.Name)
	s.logg.Info(s.logg.WithField(ctx, "cron_job", job.Name), "cron job executed manually")

	return s.Get(ctx, id)
}
