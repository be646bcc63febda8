package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"procurement-platform/internal/audit"
	"procurement-platform/internal/entity"
	"procurement-platform/internal/notify"

	"github.com/google/uuid"
)

// Engine is the single transition authority for all governed entities.
//
// It exclusively owns status changes and the audit log. Scoring and
// classification run as declared side effects; they return derived values the
// engine persists atomically with the status change.
type Engine struct {
	store    Store
	notifier notify.Notifier
	tables   map[entity.Type]Table

	locks *keyedMutex
	clock func() time.Time
	log   *slog.Logger
}

func NewEngine(store Store, notifier notify.Notifier, tables map[entity.Type]Table, log *slog.Logger) *Engine {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store:    store,
		notifier: notifier,
		tables:   tables,
		locks:    newKeyedMutex(),
		clock:    time.Now,
		log:      log,
	}
}

// Apply validates and executes one transition.
//
// Precondition order, first failure wins:
//  1. role (or assigned-identity) gate → ForbiddenError
//  2. entity data preconditions → PreconditionError with the missing items
//  3. optimistic version check at commit → ConflictError
//
// Status changes are all-or-nothing: side effects run on a deep copy, a
// failing side effect discards the copy and surfaces TransitionFailedError,
// and the status change and its audit entry commit as one unit — the store
// never holds one without the other. Re-invoking a transition that already
// completed, with the same actor, is a no-op success with no duplicate audit
// entry.
func (e *Engine) Apply(ctx context.Context, t entity.Type, id, transitionName string, actor Actor, notes string) (entity.Workflowable, error) {
	table, ok := e.tables[t]
	if !ok {
		return nil, &PreconditionError{Transition: transitionName, Missing: []string{fmt.Sprintf("no workflow defined for entity type %q", t)}}
	}
	if actor.ID == "" || actor.Role == "" {
		return nil, &ForbiddenError{Transition: transitionName, Role: actor.Role}
	}

	unlock := e.locks.lock(string(t) + "/" + id)
	defer unlock()

	w, err := e.store.Load(ctx, t, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, &NotFoundError{EntityType: t, EntityID: id}
		}
		return nil, &StorageError{Op: "load", Err: err}
	}

	tr, found := table.find(w.CurrentStatus(), transitionName)
	if !found {
		// UI retries after a timeout are common: the same transition by the
		// same actor that already landed is a no-op success.
		if e.isIdempotentRetry(table, w, transitionName, actor) {
			return w, nil
		}
		return nil, &PreconditionError{
			Transition: transitionName,
			Missing:    []string{fmt.Sprintf("transition not available from status %q", w.CurrentStatus())},
		}
	}

	if tr.AssignedActor != nil {
		required := tr.AssignedActor(w)
		if required == "" {
			return nil, &PreconditionError{Transition: transitionName, Missing: []string{"no approver assigned"}}
		}
		if actor.ID != required {
			return nil, &ForbiddenError{Transition: transitionName, Role: actor.Role}
		}
	} else if !tr.allowsRole(actor.Role) {
		return nil, &ForbiddenError{Transition: transitionName, Role: actor.Role}
	}

	var missing []string
	for _, pre := range tr.Data {
		missing = append(missing, pre(w)...)
	}
	if len(missing) > 0 {
		return nil, &PreconditionError{Transition: transitionName, Missing: missing}
	}

	// Work on a deep copy so a failed side effect leaves no trace.
	cp := w.Clone()
	change := entity.StatusChange{
		Transition: tr.Name,
		From:       w.CurrentStatus(),
		To:         tr.Target,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Notes:      notes,
		Timestamp:  e.clock().UTC(),
	}
	cp.ApplyChange(change)

	for _, effect := range tr.SideEffects {
		if err := effect(ctx, cp); err != nil {
			return nil, &TransitionFailedError{Transition: tr.Name, Err: err}
		}
	}

	entry := audit.Entry{
		ID:           uuid.NewString(),
		EntityType:   t,
		EntityID:     id,
		Action:       tr.Name,
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		BeforeStatus: change.From,
		AfterStatus:  change.To,
		Notes:        notes,
		Timestamp:    change.Timestamp,
	}

	if err := e.store.Commit(ctx, cp, w.Version(), entry); err != nil {
		switch {
		case errors.Is(err, entity.ErrVersionConflict):
			return nil, &ConflictError{EntityType: t, EntityID: id}
		case errors.Is(err, entity.ErrNotFound):
			return nil, &NotFoundError{EntityType: t, EntityID: id}
		default:
			return nil, &StorageError{Op: "commit", Err: err}
		}
	}

	// Notifications are fire-and-forget; failures never block a transition.
	if err := e.notifier.Notify(ctx, notify.Event{
		EntityType: string(t),
		EntityID:   id,
		Action:     tr.Name,
		Status:     string(tr.Target),
		ActorID:    actor.ID,
		OccurredAt: change.Timestamp,
	}); err != nil {
		e.log.Warn("notify failed", "entity_type", t, "entity_id", id, "action", tr.Name, "err", err)
	}

	return cp, nil
}

// isIdempotentRetry reports whether the entity is already at a status this
// transition name leads to, with the last applied change recording the same
// transition by the same actor.
func (e *Engine) isIdempotentRetry(table Table, w entity.Workflowable, transitionName string, actor Actor) bool {
	last, ok := w.LastChange()
	if !ok {
		return false
	}
	if last.Transition != transitionName || last.ActorID != actor.ID {
		return false
	}
	for _, target := range table.targets(transitionName) {
		if target == w.CurrentStatus() {
			return true
		}
	}
	return false
}
