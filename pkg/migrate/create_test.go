package migrate

import (
	"testing"
	"time"
)

func TestMigrationFilenameSlugifiesName(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	got, err := migrationFilename("  Add Contact-Tags! ", now)
	if err != nil {
		t.Fatalf("migrationFilename: %v", err)
	}
	if got != "20260301120000_add_contact_tags.sql" {
		t.Fatalf("unexpected filename %q", got)
	}
	if !migrationFileRe.MatchString(got) {
		t.Fatalf("generated filename %q does not pass validation", got)
	}
}
