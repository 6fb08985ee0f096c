package migrations

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"bayesbet/internal"
)

// Files holds the bundled schema migrations
//
//go:embed *.sql
var Files embed.FS

// Migrator handles database schema migrations
type Migrator struct {
	db     *sql.DB
	files  fs.FS
	logger *internal.Logger
}

// NewMigrator creates a migrator over the bundled migrations
func NewMigrator(db *sql.DB, logger *internal.Logger) *Migrator {
	return NewMigratorFS(db, Files, logger)
}

// NewMigratorFS creates a migrator reading .sql files from the root of files
func NewMigratorFS(db *sql.DB, files fs.FS, logger *internal.Logger) *Migrator {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Migrator{db: db, files: files, logger: logger.WithComponent("migrate")}
}

// MigrationFile represents a migration file
type MigrationFile struct {
	Version string
	Path    string
}

// MigrationStatus pairs a migration with whether it has been applied
type MigrationStatus struct {
	MigrationFile
	Applied bool
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			checksum TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// Up executes all pending migrations
func (m *Migrator) Up(ctx context.Context) error {
	if err := m.ensureTable(ctx); err != nil {
		return err
	}

	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	files, err := FindMigrationFiles(m.files)
	if err != nil {
		return fmt.Errorf("failed to find migration files: %w", err)
	}

	for _, file := range files {
		if applied[file.Version] {
			continue
		}
		if err := m.applyMigration(ctx, file); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Version, err)
		}
		m.logger.Info("applied migration %s", file.Version)
	}

	return nil
}

// Down forgets the last applied migration. Schema changes are not reversed.
func (m *Migrator) Down(ctx context.Context) error {
	var version string
	err := m.db.QueryRowContext(ctx, `
		SELECT version FROM schema_migrations
		ORDER BY applied_at DESC, version DESC LIMIT 1`).Scan(&version)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("no migrations to rollback")
		}
		return fmt.Errorf("failed to get last migration: %w", err)
	}

	if _, err := m.db.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = $1", version); err != nil {
		return fmt.Errorf("failed to remove migration record: %w", err)
	}
	m.logger.Warn("removed migration record %s; schema objects were left in place", version)
	return nil
}

// Status reports every known migration and whether it has been applied
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}

	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	files, err := FindMigrationFiles(m.files)
	if err != nil {
		return nil, fmt.Errorf("failed to find migration files: %w", err)
	}

	statuses := make([]MigrationStatus, len(files))
	for i, file := range files {
		statuses[i] = MigrationStatus{MigrationFile: file, Applied: applied[file.Version]}
	}
	return statuses, nil
}

// getAppliedMigrations returns map of applied migration versions
func (m *Migrator) getAppliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// calculateChecksum computes SHA256 checksum of migration content
func calculateChecksum(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// FindMigrationFiles lists NNN_name.sql files sorted by version
func FindMigrationFiles(files fs.FS) ([]MigrationFile, error) {
	var found []MigrationFile

	err := fs.WalkDir(files, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".sql") {
			return nil
		}

		// Parse filename: 001_game_states.sql
		parts := strings.SplitN(path.Base(p), "_", 2)
		if len(parts) < 2 {
			return nil
		}

		found = append(found, MigrationFile{Version: parts[0], Path: p})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].Version < found[j].Version
	})
	return found, nil
}

// applyMigration executes a single migration file
func (m *Migrator) applyMigration(ctx context.Context, file MigrationFile) error {
	sqlBytes, err := fs.ReadFile(m.files, file.Path)
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, checksum) VALUES ($1, $2)",
		file.Version, calculateChecksum(sqlBytes))
	if err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}
