package audit

import (
	"time"

	"procurement-platform/internal/entity"
)

// Entry is an immutable, append-only audit record for one accepted workflow
// decision.
//
// Invariants:
// - Entries are never updated or deleted.
// - Exactly one entry per accepted transition; rejected attempts are not
//   recorded (they leave no state behind to explain).
//
// Storage recommendation (Postgres):
// - Table audit_entries with an INSERT-only policy.
// - Optional: trigger to prevent UPDATE/DELETE.
// - Optional: partition by time for retention.
type Entry struct {
	ID string `json:"id" db:"id"`

	EntityType entity.Type `json:"entity_type" db:"entity_type"`
	EntityID   string      `json:"entity_id" db:"entity_id"`

	// Action is the transition name that was applied.
	Action string `json:"action" db:"action"`

	ActorID   string `json:"actor_id" db:"actor_id"`
	ActorRole string `json:"actor_role" db:"actor_role"`

	BeforeStatus entity.Status `json:"before_status" db:"before_status"`
	AfterStatus  entity.Status `json:"after_status" db:"after_status"`

	// Notes carry the actor's decision notes, if any.
	Notes string `json:"notes,omitempty" db:"notes"`

	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}
