package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/xmlship"
)

// Source implements xmlship.Source on top of a MySQL table per collection.
type Source struct {
	db  *sql.DB
	cfg Config
}

var _ xmlship.Source = (*Source)(nil)

// NewSource constructs a MySQL source with validated configuration.
func NewSource(db *sql.DB, opts ...Option) (*Source, error) {
	if db == nil {
		return nil, ErrDBRequired
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}

	orderBy, err := sanitizeColumnName(cfg.OrderBy)
	if err != nil {
		return nil, err
	}
	cfg.OrderBy = orderBy

	return &Source{
		db:  db,
		cfg: cfg,
	}, nil
}

// MustNewSource constructs a MySQL source or panics on error.
func MustNewSource(db *sql.DB, opts ...Option) *Source {
	source, err := NewSource(db, opts...)
	if err != nil {
		panic(err)
	}

	return source
}

// Fetch reads every row of the collection's table. Column order follows the
// table definition; row order follows the configured OrderBy column.
func (s *Source) Fetch(ctx context.Context, collection string) ([]xmlship.Record, error) {
	table, err := sanitizeTableName(collection)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, buildSelect(table, s.cfg))
	if err != nil {
		return nil, fmt.Errorf("xmlship mysql: query %s failed: %w", table, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("xmlship mysql: scan %s failed: %w", table, err)
	}

	return records, nil
}

func scanRecords(rows *sql.Rows) ([]xmlship.Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []xmlship.Record
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
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
