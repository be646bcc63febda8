package workflow

import (
	"fmt"
	"strings"

	"procurement-platform/internal/entity"
)

// ForbiddenError: the actor's role (or identity, for assigned-approver
// transitions) does not permit this transition. Expected user-facing outcome;
// never logged as exceptional.
type ForbiddenError struct {
	Transition string
	Role       string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("workflow: role %q may not apply transition %q", e.Role, e.Transition)
}

// PreconditionError: the entity is missing data or is not in a state from
// which the transition can run. Missing lists each unmet item so the caller
// can render "Cannot submit: [missing SOW, missing risk assessment]".
type PreconditionError struct {
	Transition string
	Missing    []string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("workflow: transition %q blocked: %s", e.Transition, strings.Join(e.Missing, ", "))
}

// ConflictError: a concurrent transition won the race on this entity.
// Retryable by the caller: re-fetch, re-apply.
type ConflictError struct {
	EntityType entity.Type
	EntityID   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("workflow: concurrent transition on %s/%s", e.EntityType, e.EntityID)
}

// NotFoundError: no such entity.
type NotFoundError struct {
	EntityType entity.Type
	EntityID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("workflow: %s/%s not found", e.EntityType, e.EntityID)
}

// StorageError: a persistence collaborator failed. Infrastructure-level:
// logged, surfaced generically, not retried by the engine.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("workflow: storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// TransitionFailedError: a declared side effect failed and the transition
// was rolled back; the entity remains in its pre-transition state.
type TransitionFailedError struct {
	Transition string
	Err        error
}

func (e *TransitionFailedError) Error() string {
	return fmt.Sprintf("workflow: transition %q rolled back: %v", e.Transition, e.Err)
}

func (e *TransitionFailedError) Unwrap() error { return e.Err }
