package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	nameSanitizeRe  = regexp.MustCompile(`[^a-z0-9_]+`)
	createTableRe   = regexp.MustCompile(`^create_([a-z0-9_]+)_table$`)
	addIndexRe      = regexp.MustCompile(`^add_([a-z0-9_]+)_index_to_([a-z0-9_]+)$`)
	versionClock    = func() time.Time { return time.Now().UTC() }
	versionTemplate = "20060102150405"
)

// CreateSQLMigration writes <dir>/<YYYYMMDDHHMMSS>_<name>.sql. Names of the
// form create_<table>_table and add_<column>_index_to_<table> get a matching
// scaffold; anything else gets empty Up and Down sections.
func CreateSQLMigration(dir string, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := sanitizeName(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	filename := fmt.Sprintf("%s_%s.sql", versionClock().Format(versionTemplate), safe)
	fullpath := filepath.Join(dir, filename)
	if _, err := os.Stat(fullpath); err == nil {
		return "", fmt.Errorf("migration already exists: %s", fullpath)
	}

	if err := os.WriteFile(fullpath, []byte(scaffold(safe)), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}

func scaffold(name string) string {
	var up, down string
	switch {
	case createTableRe.MatchString(name):
		table := createTableRe.FindStringSubmatch(name)[1]
		up = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  id TEXT PRIMARY KEY,
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`, table)
		down = fmt.Sprintf("DROP TABLE IF EXISTS %s;", table)
	case addIndexRe.MatchString(name):
		m := addIndexRe.FindStringSubmatch(name)
		column, table := m[1], m[2]
		index := fmt.Sprintf("idx_%s_%s", table, column)
		up = fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s);", index, table, column)
		down = fmt.Sprintf("DROP INDEX IF EXISTS %s;", index)
	default:
		up = "-- " + name
		down = "-- rollback " + name
	}

	return fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
%s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
%s
-- +goose StatementEnd
`, up, down)
}
