// Package migrate applies the goose migrations embedded in the binary. The
// Postgres and SQLite schemas live in separate directories and are kept in
// step by hand.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/pressly/goose/v3"
)

// DefaultDir is the on-disk Postgres migration directory used by create and
// validate.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var postgresFS embed.FS

//go:embed migrations_sqlite/*.sql
var sqliteFS embed.FS

// StatusLine is one migration as reported by Status.
type StatusLine struct {
	Version int64
	Path    string
	Applied bool
}

func provider(db *sql.DB, sqlite bool) (*goose.Provider, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	dialect, source, root := goose.DialectPostgres, fs.FS(postgresFS), "migrations"
	if sqlite {
		dialect, source, root = goose.DialectSQLite3, sqliteFS, "migrations_sqlite"
	}
	sub, err := fs.Sub(source, root)
	if err != nil {
		return nil, fmt.Errorf("migrations fs: %w", err)
	}
	p, err := goose.NewProvider(dialect, db, sub)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return p, nil
}

// UpEmbedded applies every pending migration and reports how many ran. It
// leaves goose's package globals alone, so tests may call it in parallel.
func UpEmbedded(ctx context.Context, db *sql.DB, sqlite bool) (int, error) {
	p, err := provider(db, sqlite)
	if err != nil {
		return 0, err
	}
	results, err := p.Up(ctx)
	if err != nil {
		return len(results), fmt.Errorf("goose up: %w", err)
	}
	return len(results), nil
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *sql.DB, sqlite bool) error {
	p, err := provider(db, sqlite)
	if err != nil {
		return err
	}
	if _, err := p.Down(ctx); err != nil {
		return fmt.Errorf("goose down: %w", err)
	}
	return nil
}

func Status(ctx context.Context, db *sql.DB, sqlite bool) ([]StatusLine, error) {
	p, err := provider(db, sqlite)
	if err != nil {
		return nil, err
	}
	rows, err := p.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose status: %w", err)
	}
	out := make([]StatusLine, 0, len(rows))
	for _, row := range rows {
		out = append(out, StatusLine{
			Version: row.Source.Version,
			Path:    row.Source.Path,
			Applied: row.State == goose.StateApplied,
		})
	}
	return out, nil
}

// MigrateToVersion moves the schema up or down to target, a
// YYYYMMDDHHMMSS version string.
func MigrateToVersion(ctx context.Context, db *sql.DB, sqlite bool, target string) error {
	version, err := strconv.ParseInt(target, 10, 64)
	if err != nil || version < 0 {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS)", target)
	}
	p, err := provider(db, sqlite)
	if err != nil {
		return err
	}
	current, err := p.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}
	switch {
	case current < version:
		_, err = p.UpTo(ctx, version)
	case current > version:
		_, err = p.DownTo(ctx, version)
	}
	if err != nil {
		return fmt.Errorf("migrate to %d: %w", version, err)
	}
	return nil
}
