package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/Simplici0/quotedesk/internal/db"
)

//go:embed sql/*.sql
var files embed.FS

const dir = "sql"

// Up runs all pending embedded SQL migrations for the given dialect.
func Up(conn *sql.DB, dialect db.Dialect) error {
	goose.SetBaseFS(files)

	if err := goose.SetDialect(dialect.GooseDialect()); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(conn, dir); err != nil {
		return fmt.Errorf("run goose up migrations: %w", err)
	}

	return nil
}

// Version reports the current schema version.
func Version(conn *sql.DB, dialect db.Dialect) (int64, error) {
	goose.SetBaseFS(files)

	if err := goose.SetDialect(dialect.GooseDialect()); err != nil {
		return 0, fmt.Errorf("set goose dialect: %w", err)
	}

	v, err := goose.GetDBVersion(conn)
	if err != nil {
		return 0, fmt.Errorf("read goose version: %w", err)
	}
	return v, nil
}
