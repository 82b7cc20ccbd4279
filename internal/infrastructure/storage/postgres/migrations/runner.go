// Package migrations holds the embedded schema and applies it in order.
//
// Migrations must run on an RLS-bypassing connection (superuser or table
// owner with BYPASSRLS), never through the application role.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"tenantpress/pkg/logger"
)

//go:embed *.sql
var FS embed.FS

// DB is satisfied by *pgxpool.Pool and *pgx.Conn.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// lockKey serialises concurrent runs (e.g. parallel test binaries).
const lockKey = 7_354_112_908

// Run applies all unapplied migrations from FS in one transaction under
// an advisory lock, and returns the files it applied.
func Run(ctx context.Context, db DB) ([]string, error) {
	files, err := Files()
	if err != nil {
		return nil, fmt.Errorf("list migration files: %w", err)
	}

	t, err := db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = t.Rollback(context.Background()) }()

	if _, err := t.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", int64(lockKey)); err != nil {
		return nil, fmt.Errorf("acquire migration lock: %w", err)
	}
	if err := ensureMigrationsTable(ctx, t); err != nil {
		return nil, fmt.Errorf("ensure migrations table: %w", err)
	}
	applied, err := appliedMigrations(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("get applied migrations: %w", err)
	}

	var done []string
	for _, filename := range files {
		if applied[filename] {
			logger.Debug(ctx, "migration already applied", "file", filename)
			continue
		}
		if err := applyMigration(ctx, t, filename); err != nil {
			return nil, fmt.Errorf("apply migration %s: %w", filename, err)
		}
		done = append(done, filename)
	}

	if err := t.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit migrations: %w", err)
	}
	for _, f := range done {
		logger.Info(ctx, "migration applied", "file", f)
	}
	return done, nil
}

// Files lists the embedded migrations in apply order.
func Files() ([]string, error) {
	entries, err := fs.ReadDir(FS, ".")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// execer is the part of pgx.Tx the helpers need.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func ensureMigrationsTable(ctx context.Context, db execer) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename   TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

func appliedMigrations(ctx context.Context, db execer) (map[string]bool, error) {
	rows, err := db.Query(ctx, "SELECT filename FROM schema_migrations ORDER BY filename")
	if err != nil {
		return nil, err
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}

	applied := make(map[string]bool, len(names))
	for _, n := range names {
		applied[n] = true
	}
	return applied, nil
}

func applyMigration(ctx context.Context, db execer, filename string) error {
	content, err := fs.ReadFile(FS, filename)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	// No arguments: pgx uses the simple protocol, which allows
	// multiple statements per file.
	if _, err := db.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("execute sql: %w", err)
	}
	if _, err := db.Exec(ctx, "INSERT INTO schema_migrations (filename) VALUES ($1)", filename); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return nil
}
