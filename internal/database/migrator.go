package database

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrator handles database schema migrations
type Migrator struct {
	pool *pgxpool.Pool
	fsys fs.FS
	dir  string
}

// NewMigratorWithFS creates a migration runner reading *.sql files from dir
// inside fsys (normally the embedded migrations package).
func NewMigratorWithFS(pool *pgxpool.Pool, fsys fs.FS, dir string) *Migrator {
	return &Migrator{
		pool: pool,
		fsys: fsys,
		dir:  dir,
	}
}

// RunMigrations executes all pending database migrations
//
// This function:
//  1. Creates a migrations tracking table if it doesn't exist
//  2. Skips migrations that have already been run
//  3. Executes new migrations in filename order, each in its own transaction
//  4. Records successful migrations in the tracking table
//
// Files containing "reset" in their name are never run automatically.
func (m *Migrator) RunMigrations(ctx context.Context) error {
	log.Println("[Migrator] Starting database migrations...")

	if err := m.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	files, err := ListMigrationFiles(m.fsys, m.dir)
	if err != nil {
		return err
	}

	migrationsRun := 0
	for _, filename := range PendingMigrations(files, applied) {
		content, err := fs.ReadFile(m.fsys, joinPath(m.dir, filename))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		log.Printf("[Migrator]   → Running: %s", filename)
		if err := m.apply(ctx, filename, string(content)); err != nil {
			return err
		}
		migrationsRun++
	}

	if migrationsRun > 0 {
		log.Printf("[Migrator] ✓ Successfully ran %d new migration(s)", migrationsRun)
	} else {
		log.Println("[Migrator] ✓ All migrations already applied - database is up to date")
	}

	return nil
}

// Status returns every migration file with whether it has been applied
func (m *Migrator) Status(ctx context.Context) (map[string]bool, []string, error) {
	if err := m.createMigrationsTable(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to create migrations table: %w", err)
	}
	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return nil, nil, err
	}
	files, err := ListMigrationFiles(m.fsys, m.dir)
	if err != nil {
		return nil, nil, err
	}
	return applied, files, nil
}

func (m *Migrator) apply(ctx context.Context, filename, sql string) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin migration %s: %w", filename, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to run migration %s: %w", filename, err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO schema_migrations (filename) VALUES ($1) ON CONFLICT (filename) DO NOTHING`,
		filename); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", filename, err)
	}
	return tx.Commit(ctx)
}

// Reset runs the reset scripts, dropping every table. The schema must be
// migrated again afterwards.
func (m *Migrator) Reset(ctx context.Context) error {
	files, err := ListMigrationFiles(m.fsys, m.dir)
	if err != nil {
		return err
	}
	for _, f := range ResetScripts(files) {
		content, err := fs.ReadFile(m.fsys, joinPath(m.dir, f))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f, err)
		}
		if _, err := m.pool.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to run %s: %w", f, err)
		}
		log.Printf("[Migrator] Applied reset script %s", f)
	}
	return nil
}

// ResetScripts returns the destructive files skipped by normal migration
func ResetScripts(files []string) []string {
	var out []string
	for _, f := range files {
		if strings.Contains(f, "reset") {
			out = append(out, f)
		}
	}
	return out
}

// ListMigrationFiles returns the .sql files in dir sorted by name
func ListMigrationFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
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

// PendingMigrations filters out applied files and reset scripts, keeping order
func PendingMigrations(files []string, applied map[string]bool) []string {
	var pending []string
	for _, f := range files {
		if strings.Contains(f, "reset") || applied[f] {
			continue
		}
		pending = append(pending, f)
	}
	return pending
}

func joinPath(dir, name string) string {
	if dir == "" || dir == "." {
		return name
	}
	return strings.TrimSuffix(dir, "/") + "/" + name
}

// createMigrationsTable creates the schema_migrations table if it doesn't exist
func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := m.pool.Exec(ctx, query)
	return err
}

// getAppliedMigrations returns a map of all migrations that have been applied
func (m *Migrator) getAppliedMigrations(ctx context.Context) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := m.pool.Query(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			return nil, err
		}
		applied[filename] = true
	}

	return applied, rows.Err()
}
