package events

import (
	"context"

	"github.com/google/uuid"
	"github.com/lynk-ai/lynk-backend/internal/repo"
	"github.com/lynk-ai/lynk-backend/pkg/db/models"
	"github.com/lynk-ai/lynk-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository persists the events log.
type Repository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context, params pagination.Params) ([]models.Event, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type repositoryImpl struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{Base: repo.NewBase(db)}
}

func (r *repositoryImpl) Create(ctx context.Context, event *models.Event) error {
	return r.DB(ctx).Create(event).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := r.DB(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repositoryImpl) List(ctx context.Context, params pagination.Params) ([]models.Event, error) {
	params = params.Normalize()
	var rows []models.Event
	err := r.DB(ctx).
		Order(`"timestamp" DESC, id DESC`).
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&rows).Error
	return rows, err
}

// Update applies column updates; a missing row surfaces as gorm.ErrRecordNotFound.
func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		var count int64
		if err := r.DB(ctx).Model(&models.Event{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}
	result := r.DB(ctx).Model(&models.Event{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.DB(ctx).Where("id = ?", id).Delete(&models.Event{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
