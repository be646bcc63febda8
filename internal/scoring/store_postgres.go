package scoring

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"procurement-platform/pkg/utils"
)

// PostgresStore persists scoring configurations.
//
// Assumed table:
//
//	CREATE TABLE scoring_configs (
//	    config_type TEXT PRIMARY KEY,
//	    version     INT  NOT NULL,
//	    draft       BOOLEAN NOT NULL,
//	    criteria    JSONB NOT NULL,
//	    updated_at  TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

func (s *PostgresStore) Get(ctx context.Context, t ConfigType) (Configuration, error) {
	const q = `
SELECT config_type, version, draft, criteria
FROM scoring_configs
WHERE config_type = $1
`
	var (
		cfg Configuration
		raw []byte
	)
	err := s.db.QueryRowContext(ctx, q, t).Scan(&cfg.Type, &cfg.Version, &cfg.Draft, &raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if def, ok := Defaults()[t]; ok {
				return def, nil
			}
			return Configuration{}, ErrConfigNotFound
		}
		return Configuration{}, err
	}
	if err := json.Unmarshal(raw, &cfg.Criteria); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

// Save bumps the version inside a transaction so concurrent saves of the
// same config type cannot produce duplicate versions.
func (s *PostgresStore) Save(ctx context.Context, cfg Configuration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(cfg.Criteria)
	if err != nil {
		return err
	}

	return utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const lockQ = `SELECT version FROM scoring_configs WHERE config_type = $1 FOR UPDATE`
		var version int
		err := tx.QueryRowContext(ctx, lockQ, cfg.Type).Scan(&version)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			version = 0
		case err != nil:
			return err
		}

		const upsertQ = `
INSERT INTO scoring_configs (config_type, version, draft, criteria, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (config_type)
DO UPDATE SET version = EXCLUDED.version, draft = EXCLUDED.draft,
              criteria = EXCLUDED.criteria, updated_at = EXCLUDED.updated_at
`
		_, err = tx.ExecContext(ctx, upsertQ, cfg.Type, version+1, cfg.Draft, raw, time.Now().UTC())
		return err
	})
}

// Reset deletes stored rows; Get then serves the built-in defaults.
// Idempotent.
func (s *PostgresStore) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM scoring_configs`)
	return err
}
