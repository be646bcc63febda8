package entity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PostgresRepo stores each entity as a JSONB document with an explicit
// version column for the optimistic save check.
//
// Assumed table:
//
//	CREATE TABLE entities (
//	    entity_type TEXT NOT NULL,
//	    id          TEXT NOT NULL,
//	    status      TEXT NOT NULL,
//	    version     INT  NOT NULL,
//	    doc         JSONB NOT NULL,
//	    created_at  TIMESTAMPTZ NOT NULL,
//	    updated_at  TIMESTAMPTZ NOT NULL,
//	    PRIMARY KEY (entity_type, id)
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

// querier is satisfied by both *sql.DB and *sql.Tx so the save path can run
// standalone or inside a caller-owned transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *PostgresRepo) Load(ctx context.Context, t Type, id string) (Workflowable, error) {
	const q = `
SELECT doc
FROM entities
WHERE entity_type = $1 AND id = $2
`
	var raw []byte
	if err := r.db.QueryRowContext(ctx, q, t, id).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	w, ok := New(t)
	if !ok {
		return nil, errors.New("entity: unknown entity type")
	}
	if err := json.Unmarshal(raw, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (r *PostgresRepo) Create(ctx context.Context, w Workflowable) error {
	raw, err := json.Marshal(w)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO entities (entity_type, id, status, version, doc, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
ON CONFLICT (entity_type, id) DO NOTHING
`
	res, err := r.db.ExecContext(ctx, q, w.EntityType(), w.EntityID(), w.CurrentStatus(), w.Version(), raw, time.Now().UTC())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// Save persists the entity only if the stored version still matches
// expectedVersion. A zero-row update distinguishes conflict from not-found.
func (r *PostgresRepo) Save(ctx context.Context, w Workflowable, expectedVersion int) error {
	return saveEntity(ctx, r.db, w, expectedVersion)
}

// SaveTx is Save running on a caller-owned transaction, so a status change
// can commit atomically with other rows (the workflow's audit entry).
func (r *PostgresRepo) SaveTx(ctx context.Context, tx *sql.Tx, w Workflowable, expectedVersion int) error {
	return saveEntity(ctx, tx, w, expectedVersion)
}

func saveEntity(ctx context.Context, q querier, w Workflowable, expectedVersion int) error {
	raw, err := json.Marshal(w)
	if err != nil {
		return err
	}

	const update = `
UPDATE entities
SET status = $1, version = $2, doc = $3, updated_at = $4
WHERE entity_type = $5 AND id = $6 AND version = $7
`
	res, err := q.ExecContext(ctx, update, w.CurrentStatus(), w.Version(), raw, time.Now().UTC(), w.EntityType(), w.EntityID(), expectedVersion)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	const existsQ = `SELECT 1 FROM entities WHERE entity_type = $1 AND id = $2`
	var one int
	if err := q.QueryRowContext(ctx, existsQ, w.EntityType(), w.EntityID()).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return ErrVersionConflict
}
