package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/example/xmlship"
)

func openFixture(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			name TEXT NULL
		)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.ExecContext(ctx, `
		INSERT INTO users (id, name) VALUES
			(1, 'alpha'),
			(2, 'beta'),
			(3, NULL)`); err != nil {
		t.Fatalf("insert rows: %v", err)
	}

	return db
}

func TestSourceFetch(t *testing.T) {
	db := openFixture(t)
	source := MustNewSource(db, WithOrderBy("id"))

	records, err := source.Fetch(context.Background(), "users")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if first.Fields[0].Name != "id" || first.Fields[0].Value != "1" {
		t.Fatalf("unexpected first field %+v", first.Fields[0])
	}
	if first.Fields[1].Name != "name" || first.Fields[1].Value != "alpha" {
		t.Fatalf("unexpected second field %+v", first.Fields[1])
	}
	if !records[2].Fields[1].Null {
		t.Fatalf("expected NULL name on row 3, got %+v", records[2].Fields[1])
	}
}

func TestSourceFetchLimit(t *testing.T) {
	db := openFixture(t)
	source := MustNewSource(db, WithOrderBy("id"), WithLimit(2))

	records, err := source.Fetch(context.Background(), "users")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}

func TestSourceFetchEmptyTable(t *testing.T) {
	db := openFixture(t)
	if _, err := db.ExecContext(context.Background(), "DELETE FROM users"); err != nil {
		t.Fatalf("clear table: %v", err)
	}

	source := MustNewSource(db)
	records, err := source.Fetch(context.Background(), "users")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestSourceFetchRejectsInvalidTable(t *testing.T) {
	db := openFixture(t)
	source := MustNewSource(db)

	if _, err := source.Fetch(context.Background(), "users; DROP TABLE users"); !errors.Is(err, ErrInvalidTableName) {
		t.Fatalf("expected ErrInvalidTableName, got %v", err)
	}
	if _, err := source.Fetch(context.Background(), ""); !errors.Is(err, ErrTableNameRequired) {
		t.Fatalf("expected ErrTableNameRequired, got %v", err)
	}
}

func TestSourceFetchMissingTable(t *testing.T) {
	db := openFixture(t)
	source := MustNewSource(db)

	if _, err := source.Fetch(context.Background(), "missing"); err == nil {
		t.Fatalf("expected query error for missing table")
	}
}

func TestNewSourceValidation(t *testing.T) {
	if _, err := NewSource(nil); !errors.Is(err, ErrDBRequired) {
		t.Fatalf("expected ErrDBRequired, got %v", err)
	}

	db := openFixture(t)
	if _, err := NewSource(db, WithOrderBy("id; DROP")); !errors.Is(err, ErrInvalidOrderColumn) {
		t.Fatalf("expected ErrInvalidOrderColumn, got %v", err)
	}
}

func TestSourceFetchFeedsEncoder(t *testing.T) {
	db := openFixture(t)
	source := MustNewSource(db, WithOrderBy("id"))

	records, err := source.Fetch(context.Background(), "users")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	doc, err := xmlship.NewXMLEncoder().Encode(records, "users")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if want := "<name>alpha</name>"; !strings.Contains(doc, want) {
		t.Fatalf("expected document to contain %q:\n%s", want, doc)
	}
}
