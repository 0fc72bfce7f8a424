// Package dbtest opens isolated in-memory SQLite databases carrying the service schema.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// schema mirrors pkg/migrate/migrations with SQLite column types.
var schema = []string{`
CREATE TABLE IF NOT EXISTS events (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  data TEXT,
  processed INTEGER NOT NULL DEFAULT 0,
  timestamp DATETIME NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS marketing (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  company TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT '',
  external_id TEXT NOT NULL DEFAULT '',
  raw_profile TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  last_communication_at DATETIME
);`, `
CREATE UNIQUE INDEX IF NOT EXISTS idx_marketing_email ON marketing (email);`, `
CREATE TABLE IF NOT EXISTS marketing_communications (
  id TEXT PRIMARY KEY,
  contact_id TEXT NOT NULL REFERENCES marketing(id) ON DELETE CASCADE,
  channel TEXT NOT NULL,
  subject TEXT NOT NULL,
  body TEXT NOT NULL,
  sent_at DATETIME NOT NULL,
  message_type TEXT NOT NULL,
  status TEXT NOT NULL,
  success INTEGER NOT NULL,
  template TEXT NOT NULL DEFAULT '',
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS cron_jobs (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  schedule TEXT NOT NULL,
  last_run DATETIME,
  next_run DATETIME,
  active INTEGER NOT NULL DEFAULT 1
);`,
}

// Open returns a fresh database per call so parallel tests never share rows.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// shared-cache memory databases report SQLITE_LOCKED under concurrent writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}
