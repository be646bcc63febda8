package audit

import (
	"context"
	"database/sql"

	"procurement-platform/internal/entity"
)

// PostgresRepo persists audit entries.
//
// Assumed table (INSERT-only):
//
//	CREATE TABLE audit_entries (
//	    id            TEXT PRIMARY KEY,
//	    entity_type   TEXT NOT NULL,
//	    entity_id     TEXT NOT NULL,
//	    action        TEXT NOT NULL,
//	    actor_id      TEXT NOT NULL,
//	    actor_role    TEXT NOT NULL,
//	    before_status TEXT NOT NULL,
//	    after_status  TEXT NOT NULL,
//	    notes         TEXT NOT NULL DEFAULT '',
//	    ts            TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX ON audit_entries (entity_type, entity_id, ts);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Entry) error {
	return appendEntry(ctx, r.db, e)
}

// AppendTx is Append running on a caller-owned transaction, so the entry can
// commit atomically with the status change it records.
func (r *PostgresRepo) AppendTx(ctx context.Context, tx *sql.Tx, e Entry) error {
	return appendEntry(ctx, tx, e)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func appendEntry(ctx context.Context, x execer, e Entry) error {
	const q = `
INSERT INTO audit_entries (id, entity_type, entity_id, action, actor_id, actor_role, before_status, after_status, notes, ts)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	_, err := x.ExecContext(ctx, q,
		e.ID, e.EntityType, e.EntityID, e.Action,
		e.ActorID, e.ActorRole, e.BeforeStatus, e.AfterStatus,
		e.Notes, e.Timestamp,
	)
	return err
}

func (r *PostgresRepo) Query(ctx context.Context, t entity.Type, id string) ([]Entry, error) {
	const q = `
SELECT id, entity_type, entity_id, action, actor_id, actor_role, before_status, after_status, notes, ts
FROM audit_entries
WHERE entity_type = $1 AND entity_id = $2
ORDER BY ts ASC
`
	rows, err := r.db.QueryContext(ctx, q, t, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
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
