package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lynk-ai/lynk-backend/pkg/db"
	"github.com/lynk-ai/lynk-backend/pkg/db/models"
	dbtypes "github.com/lynk-ai/lynk-backend/pkg/db/types"
	pkgerrors "github.com/lynk-ai/lynk-backend/pkg/errors"
	"github.com/lynk-ai/lynk-backend/pkg/pagination"
)

// Service exposes the events log: append-only for the webhook pipeline, CRUD for operators.
type Service interface {
	Append(ctx context.Context, event *models.Event) error
	Create(ctx context.Context, input CreateInput) (*models.Event, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context, params pagination.Params) ([]models.Event, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CreateInput struct {
	Name        string          `json:"name" validate:"required"`
	Description *string         `json:"description"`
	Timestamp   *time.Time      `json:"timestamp"`
	Processed   bool            `json:"processed"`
	Data        json.RawMessage `json:"data"`
}

// UpdateInput is a partial update; nil fields are left untouched.
type UpdateInput struct {
	Name        *string          `json:"name" validate:"omitempty,min=1"`
	Description *string          `json:"description"`
	Timestamp   *time.Time       `json:"timestamp"`
	Processed   *bool            `json:"processed"`
	Data        *json.RawMessage `json:"data"`
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "events repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Append(ctx context.Context, event *models.Event) error {
	if event == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "event is required")
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append event")
	}
	return nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Event, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	data, err := documentFromRaw(input.Data)
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		Name:        name,
		Description: input.Description,
		Processed:   input.Processed,
		Data:        data,
	}
	if input.Timestamp != nil {
		event.Timestamp = input.Timestamp.UTC()
	}
	if err := s.Append(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get event")
	}
	return event, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]models.Event, error) {
	rows, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list events")
	}
	return rows, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Event, error) {
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
	if input.Timestamp != nil {
		updates["timestamp"] = input.Timestamp.UTC()
	}
	if input.Processed != nil {
		updates["processed"] = *input.Processed
	}
	if input.Data != nil {
		data, err := documentFromRaw(*input.Data)
		if err != nil {
			return nil, err
		}
		updates["data"] = data
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update event")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete event")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Event not found")
	}
	return nil
}

func documentFromRaw(raw json.RawMessage) (dbtypes.JSONDocument, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if !json.Valid([]byte(trimmed)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "data must be valid JSON")
	}
	return dbtypes.JSONDocument(trimmed), nil
}
