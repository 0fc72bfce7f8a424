package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base carries the gorm handle shared by the contacts, events and cron job repositories.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB scopes the handle to ctx. A nil ctx returns the raw handle, which only tests rely on.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Transaction runs fn against a Base bound to a single transaction; any error rolls it back.
func (b Base) Transaction(ctx context.Context, fn func(tx Base) error) error {
	return b.DB(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewBase(tx))
	})
}
