package main

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/pressly/goose/v3"
)

func TestCollectMigrations_ParsesMigrationsDir(t *testing.T) {
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// this file lives in cmd/migrate/, so repo root is ../..
	repoRoot := filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", ".."))
	dir := filepath.Join(repoRoot, "db", "migrations")

	migrations, err := goose.CollectMigrations(dir, 0, goose.MaxVersion)
	if err != nil {
		t.Fatalf("expected migrations to parse, got error: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one migration")
	}
}

func TestMigrationsDir_Default(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "")
	if got := migrationsDir(); got != "db/migrations" {
		t.Fatalf("migrationsDir() = %q, expected db/migrations", got)
	}
}

func TestMigrationsDir_Override(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "/tmp/migrations")
	if got := migrationsDir(); got != "/tmp/migrations" {
		t.Fatalf("migrationsDir() = %q, expected override", got)
	}
}
