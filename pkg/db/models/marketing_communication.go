package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lynk-ai/lynk-backend/pkg/enums"
)

// MarketingCommunication is one entry of a contact's communications log.
// Rows are inserted, never updated or deleted by the application.
type MarketingCommunication struct {
	ID          uuid.UUID                  `gorm:"column:id;type:uuid;primaryKey" json:"-"`
	ContactID   uuid.UUID                  `gorm:"column:contact_id;type:uuid;not null;index" json:"-"`
	Channel     enums.CommunicationChannel `gorm:"column:channel;type:text;not null" json:"type"`
	Subject     string                     `gorm:"column:subject;type:text;not null" json:"subject"`
	Body        string                     `gorm:"column:body;type:text;not null" json:"content"`
	SentAt      time.Time                  `gorm:"column:sent_at;type:timestamptz;not null" json:"sent_at"`
	MessageType enums.MessageType          `gorm:"column:message_type;type:text;not null" json:"message_type"`
	Status      enums.DeliveryStatus       `gorm:"column:status;type:text;not null" json:"status"`
	Success     bool                       `gorm:"column:success;not null" json:"success"`
	Template    string                     `gorm:"column:template;type:text;not null;default:''" json:"template,omitempty"`
	CreatedAt   time.Time                  `gorm:"column:created_at;type:timestamptz;autoCreateTime" json:"-"`
}

func (MarketingCommunication) TableName() string { return "marketing_communications" }

func (c *MarketingCommunication) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
