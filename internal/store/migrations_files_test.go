package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Migrations live under db/migrations at the repo root and must follow the
// NNNN_name.up.sql naming so ApplyMigrations picks them up in order.
func TestMigrationFilesAreWellFormed(t *testing.T) {
	dir := filepath.Join("..", "..", "db", "migrations")
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("expected at least one migration file")
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			t.Errorf("unexpected directory in migrations: %s", name)
			continue
		}
		if !strings.HasSuffix(name, ".up.sql") {
			t.Errorf("migration %s does not end in .up.sql", name)
		}
		if len(name) < 5 || strings.Trim(name[:4], "0123456789") != "" {
			t.Errorf("migration %s does not start with a numeric version prefix", name)
		}
	}
}

func TestInitMigrationCreatesChangesets(t *testing.T) {
	contents, err := os.ReadFile(filepath.Join("..", "..", "db", "migrations", "0001_init.up.sql"))
	if err != nil {
		t.Fatalf("read init migration: %v", err)
	}
	sql := string(contents)
	for _, table := range []string{"users", "refresh_sessions", "revoked_access_tokens", "changesets"} {
		if !strings.Contains(sql, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("init migration missing table %s", table)
		}
	}
	if !strings.Contains(sql, "uuid TEXT NOT NULL UNIQUE") {
		t.Errorf("changesets.uuid must be unique for idempotent upsert by uuid")
	}
}
