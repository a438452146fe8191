package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const migrationTable = "schema_migrations"

const (
	upMarker   = "-- +migrate Up"
	downMarker = "-- +migrate Down"
)

// ApplyMigrations executes the Up section of every .sql file under root at
// most once, in lexical order. It returns the names applied by this call.
func ApplyMigrations(ctx context.Context, db *sqlx.DB, migrationFS fs.FS, root string) ([]string, error) {
	if db == nil {
		return nil, errors.New("sql db is required")
	}

	files, err := migrationFiles(migrationFS, root)
	if err != nil {
		return nil, err
	}

	if err := ensureMigrationTable(ctx, db); err != nil {
		return nil, err
	}

	var applied []string
	for _, file := range files {
		isApplied, err := migrationApplied(ctx, db, file)
		if err != nil {
			return applied, fmt.Errorf("check migration %s: %w", file, err)
		}
		if isApplied {
			continue
		}

		content, err := fs.ReadFile(migrationFS, path.Join(cleanRoot(root), file))
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", file, err)
		}

		upSQL := ExtractUpMigration(string(content))
		record := db.Rebind(fmt.Sprintf("INSERT INTO %s (name, applied_at) VALUES (?, ?)", migrationTable))

		err = inTx(ctx, db, func(tx *sqlx.Tx) error {
			if strings.TrimSpace(upSQL) != "" {
				if _, err := tx.ExecContext(ctx, upSQL); err != nil && !IsAlreadyExistsError(err) {
					return fmt.Errorf("exec migration %s: %w", file, err)
				}
			}
			if _, err := tx.ExecContext(ctx, record, file, time.Now().UTC().UnixMilli()); err != nil {
				return fmt.Errorf("record migration %s: %w", file, err)
			}
			return nil
		})
		if err != nil {
			return applied, err
		}
		applied = append(applied, file)
	}

	return applied, nil
}

// RevertMigrations executes the Down section of every applied migration
// under root, newest first, and forgets it. It returns the names reverted.
func RevertMigrations(ctx context.Context, db *sqlx.DB, migrationFS fs.FS, root string) ([]string, error) {
	if db == nil {
		return nil, errors.New("sql db is required")
	}

	files, err := migrationFiles(migrationFS, root)
	if err != nil {
		return nil, err
	}

	if err := ensureMigrationTable(ctx, db); err != nil {
		return nil, err
	}

	var reverted []string
	for i := len(files) - 1; i >= 0; i-- {
		file := files[i]
		isApplied, err := migrationApplied(ctx, db, file)
		if err != nil {
			return reverted, fmt.Errorf("check migration %s: %w", file, err)
		}
		if !isApplied {
			continue
		}

		content, err := fs.ReadFile(migrationFS, path.Join(cleanRoot(root), file))
		if err != nil {
			return reverted, fmt.Errorf("read migration %s: %w", file, err)
		}

		downSQL := ExtractDownMigration(string(content))
		forget := db.Rebind(fmt.Sprintf("DELETE FROM %s WHERE name = ?", migrationTable))

		err = inTx(ctx, db, func(tx *sqlx.Tx) error {
			if strings.TrimSpace(downSQL) != "" {
				if _, err := tx.ExecContext(ctx, downSQL); err != nil {
					return fmt.Errorf("revert migration %s: %w", file, err)
				}
			}
			if _, err := tx.ExecContext(ctx, forget, file); err != nil {
				return fmt.Errorf("forget migration %s: %w", file, err)
			}
			return nil
		})
		if err != nil {
			return reverted, err
		}
		reverted = append(reverted, file)
	}

	return reverted, nil
}

// ExtractUpMigration returns the SQL in the -- +migrate Up section. Files
// without markers are treated as all Up.
func ExtractUpMigration(content string) string {
	upIdx := strings.Index(content, upMarker)
	if upIdx == -1 {
		if downIdx := strings.Index(content, downMarker); downIdx != -1 {
			return content[:downIdx]
		}
		return content
	}
	downIdx := strings.Index(content, downMarker)
	if downIdx == -1 || downIdx < upIdx {
		return content[upIdx+len(upMarker):]
	}
	return content[upIdx+len(upMarker) : downIdx]
}

// ExtractDownMigration returns the SQL in the -- +migrate Down section, or ""
// when there is none.
func ExtractDownMigration(content string) string {
	downIdx := strings.Index(content, downMarker)
	if downIdx == -1 {
		return ""
	}
	rest := content[downIdx+len(downMarker):]
	if upIdx := strings.Index(rest, upMarker); upIdx != -1 {
		return rest[:upIdx]
	}
	return rest
}

// IsAlreadyExistsError reports whether this error indicates idempotent DDL success.
func IsAlreadyExistsError(err error) bool {
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "already exists") || strings.Contains(value, "duplicate column name")
}

func cleanRoot(root string) string {
	root = strings.TrimSpace(root)
	if root == "" {
		return "."
	}
	return root
}

func migrationFiles(migrationFS fs.FS, root string) ([]string, error) {
	entries, err := fs.ReadDir(migrationFS, cleanRoot(root))
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
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

func ensureMigrationTable(ctx context.Context, db *sqlx.DB) error {
	createSQL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    name TEXT PRIMARY KEY,
    applied_at BIGINT NOT NULL
);
`, migrationTable)
	if _, err := db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}
	return nil
}

func migrationApplied(ctx context.Context, db *sqlx.DB, name string) (bool, error) {
	var found int
	err := db.QueryRowxContext(ctx, db.Rebind("SELECT 1 FROM "+migrationTable+" WHERE name = ?"), name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func inTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}
