package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/lynk-ai/lynk-backend/pkg/db/types"
	"github.com/lynk-ai/lynk-backend/pkg/enums"
)

// MarketingContact is keyed by Email; ID is the store identity only.
type MarketingContact struct {
	ID                  uuid.UUID                `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email               string                   `gorm:"column:email;type:text;not null;uniqueIndex:idx_marketing_email" json:"email"`
	Name                string                   `gorm:"column:name;type:text;not null;default:''" json:"name"`
	Company             string                   `gorm:"column:company;type:text;not null;default:''" json:"company"`
	Source              enums.ContactSource      `gorm:"column:source;type:text;not null;default:''" json:"source"`
	ExternalID          string                   `gorm:"column:external_id;type:text;not null;default:''" json:"hubspot_id"`
	RawProfile          dbtypes.JSONDocument     `gorm:"column:raw_profile;type:jsonb" json:"raw_data,omitempty"`
	CreatedAt           time.Time                `gorm:"column:created_at;type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time                `gorm:"column:updated_at;type:timestamptz;autoUpdateTime" json:"updated_at"`
	LastCommunicationAt *time.Time               `gorm:"column:last_communication_at;type:timestamptz" json:"last_communication,omitempty"`
	Communications      []MarketingCommunication `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE" json:"communications"`
}

func (MarketingContact) TableName() string { return "marketing" }

func (c *MarketingContact) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
