package workflow

import (
	"context"
	"database/sql"
	"sync"

	"procurement-platform/internal/audit"
	"procurement-platform/internal/entity"
	"procurement-platform/pkg/utils"
)

// Store is the engine's persistence contract. Commit writes the entity (with
// the optimistic version check) and the audit entry as one atomic unit: a
// status change is never durable without its trail entry, and vice versa.
type Store interface {
	Load(ctx context.Context, t entity.Type, id string) (entity.Workflowable, error)
	Commit(ctx context.Context, w entity.Workflowable, expectedVersion int, entry audit.Entry) error
}

// PostgresStore commits the entity row and the audit row in one transaction.
type PostgresStore struct {
	db       *sql.DB
	entities *entity.PostgresRepo
	audits   *audit.PostgresRepo
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:       db,
		entities: entity.NewPostgresRepo(db),
		audits:   audit.NewPostgresRepo(db),
	}
}

func (s *PostgresStore) Load(ctx context.Context, t entity.Type, id string) (entity.Workflowable, error) {
	return s.entities.Load(ctx, t, id)
}

func (s *PostgresStore) Commit(ctx context.Context, w entity.Workflowable, expectedVersion int, entry audit.Entry) error {
	return utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.entities.SaveTx(ctx, tx, w, expectedVersion); err != nil {
			return err
		}
		return s.audits.AppendTx(ctx, tx, entry)
	})
}

// MemoryStore is the in-memory Store. Commit holds one lock across both
// writes and restores the pre-commit entity if the audit append fails, so
// tests observe the same all-or-nothing behavior as the transactional store.
type MemoryStore struct {
	mu       sync.Mutex
	entities *entity.MemoryRepo
	audits   audit.Repository
}

func NewMemoryStore(entities *entity.MemoryRepo, audits audit.Repository) *MemoryStore {
	return &MemoryStore{entities: entities, audits: audits}
}

func (s *MemoryStore) Load(ctx context.Context, t entity.Type, id string) (entity.Workflowable, error) {
	return s.entities.Load(ctx, t, id)
}

func (s *MemoryStore) Commit(ctx context.Context, w entity.Workflowable, expectedVersion int, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.entities.Load(ctx, w.EntityType(), w.EntityID())
	if err != nil {
		return err
	}
	if err := s.entities.Save(ctx, w, expectedVersion); err != nil {
		return err
	}
	if err := s.audits.Append(ctx, entry); err != nil {
		// Roll the entity back; the stored version is now w.Version(), which
		// the restore must match.
		_ = s.entities.Save(ctx, prev, w.Version())
		return err
	}
	return nil
}
