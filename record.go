package xmlship

import "context"

// Field is one named column value within a record.
type Field struct {
	Name  string
	Value string
	// Null reports a database NULL; Value is ignored when set.
	Null bool
}

// Record is one ordered row fetched from a collection.
type Record struct {
	Fields []Field
}

// Source supplies the ordered records of a named collection.
type Source interface {
	// Fetch returns all records of the collection in a stable order.
	Fetch(ctx context.Context, collection string) ([]Record, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, collection string) ([]Record, error)

// Fetch implements Source.
func (fn SourceFunc) Fetch(ctx context.Context, collection string) ([]Record, error) {
	return fn(ctx, collection)
}
