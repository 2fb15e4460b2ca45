package mysql

import "errors"

var (
	// ErrDBRequired is returned when a nil *sql.DB is provided.
	ErrDBRequired = errors.New("xmlship mysql: db is required")
	// ErrTableNameRequired is returned when the collection name is empty.
	ErrTableNameRequired = errors.New("xmlship mysql: table name is required")
	// ErrInvalidTableName is returned when the collection name has disallowed characters.
	ErrInvalidTableName = errors.New("xmlship mysql: invalid table name")
	// ErrInvalidOrderColumn is returned when the order column has disallowed characters.
	ErrInvalidOrderColumn = errors.New("xmlship mysql: invalid order column")
)
