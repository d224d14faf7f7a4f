// Package migrations embeds and applies the schema for each database driver.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

const createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at TEXT NOT NULL
)`

// Run applies every pending migration for the connection's driver and returns
// the versions it applied, oldest first. Each migration runs in its own
// transaction together with its schema_migrations row.
func Run(ctx context.Context, conn database.Connection) ([]string, error) {
	dir, err := dirFor(conn.Driver())
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(ctx, createVersionTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	pending, err := upFiles(dir)
	if err != nil {
		return nil, err
	}

	insert := `INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`
	lookup := `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`
	if conn.Driver() == database.DriverPostgres {
		insert = `INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)`
		lookup = `SELECT COUNT(*) FROM schema_migrations WHERE version = $1`
	}

	var applied []string
	for _, name := range pending {
		version := strings.TrimSuffix(name, ".up.sql")

		var count int
		if err := conn.QueryRow(ctx, lookup, version).Scan(&count); err != nil {
			return applied, fmt.Errorf("check migration %s: %w", version, err)
		}
		if count > 0 {
			continue
		}

		body, err := files.ReadFile(dir + "/" + name)
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", name, err)
		}

		err = database.InTx(ctx, conn, func(exec database.Executor) error {
			if _, err := exec.Exec(ctx, string(body)); err != nil {
				return err
			}
			_, err := exec.Exec(ctx, insert, version, time.Now().UTC().Format(time.RFC3339))
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("apply migration %s: %w", version, err)
		}
		applied = append(applied, version)
	}

	return applied, nil
}

func dirFor(driver database.Driver) (string, error) {
	switch driver {
	case database.DriverSQLite:
		return "sqlite", nil
	case database.DriverPostgres:
		return "postgres", nil
	default:
		return "", fmt.Errorf("no migrations for driver %q", driver)
	}
}

func upFiles(dir string) ([]string, error) {
	entries, err := fs.ReadDir(files, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
