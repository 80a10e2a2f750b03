package migration

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Sink writes one mapped record.
type Sink interface {
	Upsert(ctx context.Context, table Table, values []interface{}) error
}

// PostgresSink upserts records by primary key, last write wins.
type PostgresSink struct {
	db      *sqlx.DB
	queries map[string]string
}

// NewPostgresSink creates a sink on the given connection.
func NewPostgresSink(db *sqlx.DB) *PostgresSink {
	return &PostgresSink{db: db, queries: make(map[string]string)}
}

// Upsert inserts the record or overwrites every mapped column of the existing row.
func (s *PostgresSink) Upsert(ctx context.Context, table Table, values []interface{}) error {
	query, ok := s.queries[table.Name]
	if !ok {
		query = upsertQuery(table)
		s.queries[table.Name] = query
	}
	if _, err := s.db.ExecContext(ctx, query, values...); err != nil {
		return fmt.Errorf("upsert %s %v: %w", table.Name, values[0], err)
	}
	return nil
}

func upsertQuery(table Table) string {
	cols := table.Columns()
	placeholders := make([]string, len(cols))
	updates := make([]string, 0, len(cols))
	for i, col := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if col != "id" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}
	updates = append(updates, "updated_at = NOW()")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s",
		table.Name, strings.Join(cols, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ", "))
}
