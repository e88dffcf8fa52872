package store

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"computer-inventory-api/internal/logger"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// Migration is one embedded schema change
type Migration struct {
	Filename string
	Checksum string
	SQL      string
}

// Migrations returns the embedded migrations for driver, sorted by filename
func Migrations(driver string) ([]Migration, error) {
	dir := path.Join("migrations", driver)
	entries, err := fs.ReadDir(migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations for %s: %w", driver, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		content, err := fs.ReadFile(migrations, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		sum := sha256.Sum256(content)
		out = append(out, Migration{Filename: name, Checksum: hex.EncodeToString(sum[:]), SQL: string(content)})
	}
	return out, nil
}

func migrationsTable(driver string) string {
	if driver == DriverPostgres {
		return `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT NOT NULL UNIQUE,
			checksum TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	}
	return `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT NOT NULL UNIQUE,
			checksum TEXT NOT NULL,
			applied_at DATETIME NOT NULL
		)`
}

// Migrate applies every embedded migration not yet recorded in
// schema_migrations and returns the filenames it applied. A recorded
// migration whose checksum no longer matches is an error.
func (db *DB) Migrate(ctx context.Context) ([]string, error) {
	list, err := Migrations(db.driver)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, migrationsTable(db.driver)); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var applied []string
	for _, m := range list {
		var checksum string
		err := db.GetContext(ctx, &checksum, db.Q("SELECT checksum FROM schema_migrations WHERE filename = ?"), m.Filename)
		switch {
		case err == nil:
			if checksum != m.Checksum {
				return applied, fmt.Errorf("migration %s was modified after being applied", m.Filename)
			}
			logger.Log.Debugw("migration already applied", "filename", m.Filename)
			continue
		case !isNoRows(err):
			return applied, fmt.Errorf("failed to check migration status: %w", err)
		}

		if err := db.applyMigration(ctx, m); err != nil {
			return applied, err
		}
		logger.Log.Infow("applied migration", "filename", m.Filename)
		applied = append(applied, m.Filename)
	}
	return applied, nil
}

func (db *DB) applyMigration(ctx context.Context, m Migration) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", m.Filename, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("failed to apply migration %s: %w", m.Filename, err)
	}
	if _, err := tx.ExecContext(ctx, db.Q("INSERT INTO schema_migrations (filename, checksum, applied_at) VALUES (?, ?, ?)"),
		m.Filename, m.Checksum, now()); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", m.Filename, err)
	}
	return tx.Commit()
}
