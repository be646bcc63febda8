package reporting

import (
	"context"
	"database/sql"
	"time"

	"procurement-platform/internal/audit"
)

// PostgresSource reads summaries straight from the audit_entries table.
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource { return &PostgresSource{db: db} }

func (s *PostgresSource) EntriesBetween(ctx context.Context, from, to time.Time) ([]audit.Entry, error) {
	const q = `
SELECT id, entity_type, entity_id, action, actor_id, actor_role, before_status, after_status, notes, ts
FROM audit_entries
WHERE ts >= $1 AND ts < $2
ORDER BY ts ASC
`
	rows, err := s.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []audit.Entry
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(
			&e.ID, &e.EntityType, &e.EntityID, &e.Action,
			&e.ActorID, &e.ActorRole, &e.BeforeStatus, &e.AfterStatus,
			&e.Notes, &e.Timestamp,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
