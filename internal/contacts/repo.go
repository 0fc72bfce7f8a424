package contacts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lynk-ai/lynk-backend/internal/repo"
	"github.com/lynk-ai/lynk-backend/pkg/db/models"
	"github.com/lynk-ai/lynk-backend/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertColumns are replaced wholesale when a contact with the same email already exists.
var upsertColumns = []string{"name", "company", "source", "external_id", "raw_profile", "updated_at"}

// Repository exposes persistence helpers for marketing contacts.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.MarketingContact, error)
	Upsert(ctx context.Context, contact *models.MarketingContact) error
	Create(ctx context.Context, contact *models.MarketingContact) error
	AppendCommunication(ctx context.Context, contactID uuid.UUID, entry *models.MarketingCommunication) error
	List(ctx context.Context, params pagination.Params) ([]models.MarketingContact, error)
}

type repositoryImpl struct {
	repo.Base
}

// NewRepository returns a contacts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{Base: repo.NewBase(db)}
}

func (r *repositoryImpl) FindByEmail(ctx context.Context, email string) (*models.MarketingContact, error) {
	var contact models.MarketingContact
	err := r.DB(ctx).
		Preload("Communications", orderedCommunications).
		Where("email = ?", email).
		First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *repositoryImpl) Upsert(ctx context.Context, contact *models.MarketingContact) error {
	return r.DB(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(contact).Error
}

func (r *repositoryImpl) Create(ctx context.Context, contact *models.MarketingContact) error {
	return r.DB(ctx).Omit(clause.Associations).Create(contact).Error
}

// AppendCommunication inserts the log row and bumps last_communication_at atomically.
func (r *repositoryImpl) AppendCommunication(ctx context.Context, contactID uuid.UUID, entry *models.MarketingCommunication) error {
	return r.Transaction(ctx, func(tx repo.Base) error {
		return (&repositoryImpl{Base: tx}).appendCommunication(ctx, contactID, entry)
	})
}

func (r *repositoryImpl) appendCommunication(ctx context.Context, contactID uuid.UUID, entry *models.MarketingCommunication) error {
	entry.ContactID = contactID
	if err := r.DB(ctx).Create(entry).Error; err != nil {
		return err
	}
	result := r.DB(ctx).Model(&models.MarketingContact{}).
		Where("id = ?", contactID).
		UpdateColumn("last_communication_at", entry.SentAt.UTC())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repositoryImpl) List(ctx context.Context, params pagination.Params) ([]models.MarketingContact, error) {
	params = params.Normalize()
	var contacts []models.MarketingContact
	err := r.DB(ctx).
		Preload("Communications", orderedCommunications).
		Order("created_at DESC, id DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&contacts).Error
	return contacts, err
}

func orderedCommunications(db *gorm.DB) *gorm.DB {
	return db.Order("sent_at ASC, created_at ASC")
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
