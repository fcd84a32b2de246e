package db

import (
	"path/filepath"
	"testing"
)

func TestRebind(t *testing.T) {
	q := `SELECT id FROM quotations WHERE status = ? AND client_id = ? LIMIT ?`

	if got := Rebind(SQLite, q); got != q {
		t.Fatalf("sqlite query must be unchanged, got %q", got)
	}

	want := `SELECT id FROM quotations WHERE status = $1 AND client_id = $2 LIMIT $3`
	if got := Rebind(Postgres, q); got != want {
		t.Fatalf("unexpected postgres query: %q", got)
	}
}

func TestGooseDialect(t *testing.T) {
	if SQLite.GooseDialect() != "sqlite3" || Postgres.GooseDialect() != "postgres" {
		t.Fatalf("unexpected goose dialects")
	}
}

func TestOpenAppliesPragmas(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "pragma.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	var fk int
	if err := database.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatalf("read foreign_keys pragma: %v", err)
	}
	if fk != 1 {
		t.Fatalf("expected foreign keys on, got %d", fk)
	}

	var mode string
	if err := database.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("read journal_mode pragma: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("expected wal journal mode, got %q", mode)
	}
}

func TestConnectDefaultsToSQLite(t *testing.T) {
	database, dialect, err := Connect("", filepath.Join(t.TempDir(), "connect.db"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer database.Close()

	if dialect != SQLite {
		t.Fatalf("expected sqlite dialect, got %s", dialect)
	}
}
