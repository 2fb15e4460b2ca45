package mysql

import "fmt"

func buildSelect(table string, cfg Config) string {
	query := fmt.Sprintf("SELECT * FROM %s", table)
	if cfg.OrderBy != "" {
		query += fmt.Sprintf(" ORDER BY %s ASC", cfg.OrderBy)
	}
	if cfg.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", cfg.Limit)
	}

	return query
}
