package entity

import "time"

// Type identifies which governed entity a record belongs to.
// Fixed at creation, never changes.
type Type string

const (
	TypeAsset           Type = "asset"
	TypeBusinessRequest Type = "business_request"
	TypeContract        Type = "contract"
	TypeDeliverable     Type = "deliverable"
	TypeResource        Type = "resource"
)

func ValidType(t Type) bool {
	switch t {
	case TypeAsset, TypeBusinessRequest, TypeContract, TypeDeliverable, TypeResource:
		return true
	default:
		return false
	}
}

// Status is an entity-type-specific lifecycle state.
// The workflow engine is the only writer of Status.
type Status string

// Contract lifecycle.
const (
	StatusDraft               Status = "draft"
	StatusUnderReview         Status = "under_review"
	StatusPendingDueDiligence Status = "pending_due_diligence"
	StatusPendingSAMANOC      Status = "pending_sama_noc"
	StatusPendingHOPApproval  Status = "pending_hop_approval"
	StatusApproved            Status = "approved"
	StatusActive              Status = "active"
	StatusExpired             Status = "expired"
	StatusRejected            Status = "rejected"
)

// Business request lifecycle (shares draft/under_review/pending_hop_approval/approved/rejected).
const (
	StatusEvaluationComplete        Status = "evaluation_complete"
	StatusPendingAdditionalApproval Status = "pending_additional_approval"
)

// Asset lifecycle (shares draft/approved/rejected).
const (
	StatusPendingReview   Status = "pending_review"
	StatusPendingApproval Status = "pending_approval"
	StatusInService       Status = "in_service"
	StatusRetired         Status = "retired"
)

// Deliverable lifecycle (shares draft/under_review/rejected).
const (
	StatusSubmitted Status = "submitted"
	StatusAccepted  Status = "accepted"
)

// Resource lifecycle (shares under_review/pending_hop_approval/rejected).
const (
	StatusRequested  Status = "requested"
	StatusOnboarded  Status = "onboarded"
	StatusOffboarded Status = "offboarded"
)

// StatusChange is one entry in an entity's append-only status history.
// Entries are never mutated or reordered after insertion.
type StatusChange struct {
	Transition string    `json:"transition"`
	From       Status    `json:"from_status"`
	To         Status    `json:"to_status"`
	ActorID    string    `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	Notes      string    `json:"decision_notes,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Record carries the workflow-owned fields shared by every governed entity.
// Concrete entity types embed it.
//
// Invariants:
// - Status always has exactly one current value.
// - StatusHistory is append-only; Version() is derived from its length and
//   backs the optimistic save check in Repository.Save.
type Record struct {
	ID            string         `json:"id"`
	Type          Type           `json:"entity_type"`
	Status        Status         `json:"status"`
	StatusHistory []StatusChange `json:"status_history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Record) EntityID() string      { return r.ID }
func (r *Record) EntityType() Type      { return r.Type }
func (r *Record) CurrentStatus() Status { return r.Status }

// Version is the optimistic-concurrency token: the number of status changes
// applied so far. Two writers racing on the same entity cannot both save.
func (r *Record) Version() int { return len(r.StatusHistory) }

// History returns a copy; callers must not be able to reorder the log.
func (r *Record) History() []StatusChange {
	out := make([]StatusChange, len(r.StatusHistory))
	copy(out, r.StatusHistory)
	return out
}

// ApplyChange sets the new status and appends the history entry.
// Only the workflow engine should call this.
func (r *Record) ApplyChange(ch StatusChange) {
	r.Status = ch.To
	r.StatusHistory = append(r.StatusHistory, ch)
	r.UpdatedAt = ch.Timestamp
}

// LastChange returns the most recent history entry, if any.
func (r *Record) LastChange() (StatusChange, bool) {
	if len(r.StatusHistory) == 0 {
		return StatusChange{}, false
	}
	return r.StatusHistory[len(r.StatusHistory)-1], true
}

func (r *Record) cloneRecord() Record {
	out := *r
	out.StatusHistory = make([]StatusChange, len(r.StatusHistory))
	copy(out.StatusHistory, r.StatusHistory)
	return out
}

// Workflowable is the capability the workflow engine requires of any
// governed entity. Scoring and classification engines never write status;
// they return values the workflow layer decides whether to persist.
type Workflowable interface {
	EntityID() string
	EntityType() Type
	CurrentStatus() Status
	Version() int
	History() []StatusChange
	ApplyChange(StatusChange)
	LastChange() (StatusChange, bool)

	// Clone returns a deep copy. Transitions mutate the copy and persist it
	// atomically; the original is never left half-updated.
	Clone() Workflowable
}
