package mysql

// Config defines MySQL source behavior.
type Config struct {
	// OrderBy is the column used to order fetched rows. Empty keeps the
	// table's natural order.
	OrderBy string
	// Limit caps the number of fetched rows; zero means no cap.
	Limit int
}

// Option configures the MySQL source.
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
