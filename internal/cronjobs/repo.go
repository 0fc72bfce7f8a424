package cronjobs

import (
	"context"

	"github.com/google/uuid"
	"github.com/lynk-ai/lynk-backend/internal/repo"
	"github.com/lynk-ai/lynk-backend/pkg/db/models"
	"github.com/lynk-ai/lynk-backend/pkg/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, job *models.CronJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CronJob, error)
	List(ctx context.Context, params pagination.Params) ([]models.CronJob, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type repositoryImpl struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{Base: repo.NewBase(db)}
}

func (r *repositoryImpl) Create(ctx context.Context, job *models.CronJob) error {
	return r.DB(ctx).Create(job).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.CronJob, error) {
	var job models.CronJob
	if err := r.DB(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *repositoryImpl) List(ctx context.Context, params pagination.Params) ([]models.CronJob, error) {
	params = params.Normalize()
	var jobs []models.CronJob
	err := r.DB(ctx).Order("name ASC, id ASC").Offset(params.Skip).Limit(params.Limit).Find(&jobs).Error
	return jobs, err
}

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		_, err := r.FindByID(ctx, id)
		return err
	}
	result := r.DB(ctx).Model(&models.CronJob{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.DB(ctx).Where("id = ?", id).Delete(&models.CronJob{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
