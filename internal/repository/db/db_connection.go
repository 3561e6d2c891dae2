package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*/*.sql
var migrations embed.FS

// Options selects the driver and data source for InitDB.
type Options struct {
	Dialect Dialect
	DSN     string
}

// InitDB opens the database, applies driver pragmas, runs migrations and pings it.
// log receives goose output; nil silences it.
func InitDB(ctx context.Context, opts Options, log goose.Logger) (*sql.DB, error) {
	db, err := sql.Open(opts.Dialect.DriverName(), opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Dialect, err)
	}

	if opts.Dialect == SQLite {
		if err := configureSQLite(db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	// Fail fast if the DB cannot be reached
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", opts.Dialect, err)
	}

	if err := Migrate(ctx, db, opts.Dialect, log); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// configureSQLite applies pool limits and pragmas for SQLite.
func configureSQLite(db *sql.DB) error {
	// Conservative pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is not great with many writers
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("set %s: %w", pragma, err)
		}
	}
	return nil
}

// Migrate brings the schema up to date using the embedded goose migrations for dialect.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect, log goose.Logger) error {
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if log == nil {
		log = goose.NopLogger()
	}
	goose.SetLogger(log)

	if err := goose.SetDialect(dialect.GooseDialect()); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dialect.migrationsDir()); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
