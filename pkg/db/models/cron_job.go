package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CronJob is passive schedule metadata; nothing in the service executes it on
// a timer.
type CronJob struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"column:name;type:text;not null" json:"name"`
	Description *string    `gorm:"column:description;type:text" json:"description,omitempty"`
	Schedule    string     `gorm:"column:schedule;type:text;not null" json:"schedule"`
	LastRun     *time.Time `gorm:"column:last_run;type:timestamptz" json:"last_run,omitempty"`
	NextRun     *time.Time `gorm:"column:next_run;type:timestamptz" json:"next_run,omitempty"`
	Active      bool       `gorm:"column:active;not null" json:"active"`
}

func (CronJob) TableName() string { return "cron_jobs" }

func (j *CronJob) BeforeCreate(*gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
