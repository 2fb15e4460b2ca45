// Package sqlite provides a SQLite-backed record source, mainly for local
// exports and tests that should not need a database server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/xmlship"
)

var (
	// ErrDBRequired is returned when a nil *sql.DB is provided.
	ErrDBRequired = errors.New("xmlship sqlite: db is required")
	// ErrTableNameRequired is returned when the collection name is empty.
	ErrTableNameRequired = errors.New("xmlship sqlite: table name is required")
	// ErrInvalidTableName is returned when the collection name has disallowed characters.
	ErrInvalidTableName = errors.New("xmlship sqlite: invalid table name")
	// ErrInvalidOrderColumn is returned when the order column has disallowed characters.
	ErrInvalidOrderColumn = errors.New("xmlship sqlite: invalid order column")
)

// Open opens a SQLite database tuned for read-mostly export queries.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	// SQLite works best over a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return db, nil
}

// Config defines SQLite source behavior.
type Config struct {
	// OrderBy is the column used to order fetched rows. Empty keeps the
	// table's natural order.
	OrderBy string
	// Limit caps the number of fetched rows; zero means no cap.
	Limit int
}

// Option configures the SQLite source.
type Option func(*Config)

// WithOrderBy sets the column used to order fetched rows.
func WithOrderBy(column string) Option {
	return func(c *Config) {
		c.OrderBy = column
	}
}

// WithLimit caps the number of fetched rows.
func WithLimit(limit int) Option {
	return func(c *Config) {
		c.Limit = limit
	}
}

// Source implements xmlship.Source on top of a SQLite table per collection.
type Source struct {
	db  *sql.DB
	cfg Config
}

var _ xmlship.Source = (*Source)(nil)

// NewSource constructs a SQLite source with validated configuration.
func NewSource(db *sql.DB, opts ...Option) (*Source, error) {
	if db == nil {
		return nil, ErrDBRequired
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.OrderBy != "" {
		if err := validIdentifier(cfg.OrderBy); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidOrderColumn, cfg.OrderBy)
		}
	}

	return &Source{
		db:  db,
		cfg: cfg,
	}, nil
}

// MustNewSource constructs a SQLite source or panics on error.
func MustNewSource(db *sql.DB, opts ...Option) *Source {
	source, err := NewSource(db, opts...)
	if err != nil {
		panic(err)
	}

	return source
}

// Fetch reads every row of the collection's table.
func (s *Source) Fetch(ctx context.Context, collection string) ([]xmlship.Record, error) {
	if collection == "" {
		return nil, ErrTableNameRequired
	}
	if err := validIdentifier(collection); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTableName, collection)
	}

	query := fmt.Sprintf("SELECT * FROM %s", collection)
	if s.cfg.OrderBy != "" {
		query += fmt.Sprintf(" ORDER BY %s ASC", s.cfg.OrderBy)
	}
	if s.cfg.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", s.cfg.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("xmlship sqlite: query %s failed: %w", collection, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("xmlship sqlite: columns of %s: %w", collection, err)
	}

	var records []xmlship.Record
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("xmlship sqlite: scan %s failed: %w", collection, err)
		}

		fields := make([]xmlship.Field, len(columns))
		for i, column := range columns {
			fields[i] = xmlship.Field{
				Name:  column,
				Value: values[i].String,
				Null:  !values[i].Valid,
			}
		}
		records = append(records, xmlship.Record{Fields: fields})
	}

	return records, rows.Err()
}

func validIdentifier(name string) error {
	for _, r := range name {
		if r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}

		return errors.New("invalid identifier")
	}

	return nil
}
