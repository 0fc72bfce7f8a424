package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/lynk-ai/lynk-backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestMarketingMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_marketing.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no marketing migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS marketing (",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_marketing_email ON marketing (email)",
		"FOREIGN KEY (contact_id) REFERENCES marketing(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS marketing_communications",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestEmbeddedMigrationsMatchDisk(t *testing.T) {
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	embedded, err := migrate.Embedded.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(embedded) != len(onDisk) {
		t.Fatalf("expected %d embedded migrations, got %d", len(onDisk), len(embedded))
	}
}

func TestCreateSQLMigrationWritesGooseTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "add_contact_tags")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_contact_tags.sql") {
		t.Fatalf("unexpected migration path %q", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("created migration failed validation: %v", err)
	}
}

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	if err := migrate.ValidateFS(migrate.Embedded, "migrations"); err != nil {
		t.Fatalf("validate embedded migrations: %v", err)
	}
}

func TestValidateFSRejectsBrokenMigrations(t *testing.T) {
	complete := &fstest.MapFile{Data: []byte("-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n")}
	tests := []struct {
		name string
		fsys fstest.MapFS
		want string
	}{
		{
			name: "missing down",
			fsys: fstest.MapFS{"m/20260301120000_add_tags.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")}},
			want: "-- +goose Down",
		},
		{
			name: "duplicate version",
			fsys: fstest.MapFS{
				"m/20260301120000_add_tags.sql":  complete,
				"m/20260301120000_drop_tags.sql": complete,
			},
			want: "duplicate migration version",
		},
		{
			name: "bad filename",
			fsys: fstest.MapFS{"m/AddTags.sql": complete},
			want: "invalid migration filename",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := migrate.ValidateFS(tc.fsys, "m")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSQLMigrationRejectsEmptyName(t *testing.T) {
	if _, err := migrate.CreateSQLMigration(t.TempDir(), " -- "); err == nil {
		t.Fatal("expected error for a name with no usable characters")
	}
}
