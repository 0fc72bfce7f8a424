package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/lynk-ai/lynk-backend/pkg/db/types"
)

// Event is an append-only log entry in the events collection. Webhook
// deliveries are recorded here with Name "hubspot_webhook".
type Event struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string               `gorm:"column:name;type:text;not null" json:"name"`
	Description *string              `gorm:"column:description;type:text" json:"description,omitempty"`
	Data        dbtypes.JSONDocument `gorm:"column:data;type:jsonb" json:"data,omitempty"`
	Processed   bool                 `gorm:"column:processed;not null;default:false" json:"processed"`
	Timestamp   time.Time            `gorm:"column:timestamp;type:timestamptz;not null" json:"timestamp"`
}

func (Event) TableName() string { return "events" }

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return nil
}
