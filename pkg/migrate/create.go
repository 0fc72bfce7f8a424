package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var nonSlugRe = regexp.MustCompile(`[^a-z0-9_]+`)

const migrationTemplate = `-- +goose Up
-- +goose StatementBegin
-- %[1]s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %[1]s
-- +goose StatementEnd
`

// CreateSQLMigration writes an empty goose migration <dir>/<version>_<slug>.sql
// and returns its path. It never overwrites an existing file.
func CreateSQLMigration(dir string, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	filename, err := migrationFilename(name, time.Now().UTC())
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	fullpath := filepath.Join(dir, filename)
	file, err := os.OpenFile(fullpath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("migration already exists: %s", fullpath)
		}
		return "", fmt.Errorf("create migration %q: %w", fullpath, err)
	}
	slug := strings.TrimSuffix(filename[len(versionLayout)+1:], ".sql")
	if _, err := fmt.Fprintf(file, migrationTemplate, slug); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

// migrationFilename turns a free-form name like "Add contact tags" into
// 20260301120000_add_contact_tags.sql.
func migrationFilename(name string, now time.Time) (string, error) {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Trim(nonSlugRe.ReplaceAllString(slug, "_"), "_")
	if slug == "" {
		return "", fmt.Errorf("name %q has no usable characters", name)
	}
	return fmt.Sprintf("%s_%s.sql", now.Format(versionLayout), slug), nil
}
