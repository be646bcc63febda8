package workflow

import (
	"context"
	"sync"

	"procurement-platform/internal/entity"
)

// Actor is the authenticated identity applying a transition.
type Actor struct {
	ID   string
	Role string
}

// DataPrecondition inspects the entity and returns the items still missing.
// An empty return means the precondition is satisfied.
type DataPrecondition func(w entity.Workflowable) (missing []string)

// SideEffect runs against the transition's working copy before commit.
// A failing side effect rolls the whole transition back.
type SideEffect func(ctx context.Context, w entity.Workflowable) error

// Transition is one row of an entity type's declarative transition table.
//
// Gating is by role set, except when AssignedActor is non-nil: then the
// transition is gated to the single user id it returns (the ad-hoc
// additional-approver case), and Roles is ignored.
type Transition struct {
	Name   string
	Target entity.Status
	Roles  []string

	AssignedActor func(w entity.Workflowable) string

	Data        []DataPrecondition
	SideEffects []SideEffect
}

func (t Transition) allowsRole(role string) bool {
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Table maps each status to the transitions available from it.
type Table map[entity.Status][]Transition

func (tb Table) find(from entity.Status, name string) (Transition, bool) {
	for _, t := range tb[from] {
		if t.Name == name {
			return t, true
		}
	}
	return Transition{}, false
}

// targets returns every target status a transition name leads to anywhere in
// the table; used for the idempotent-retry check.
func (tb Table) targets(name string) []entity.Status {
	var out []entity.Status
	for _, ts := range tb {
		for _, t := range ts {
			if t.Name == name {
				out = append(out, t.Target)
			}
		}
	}
	return out
}

// keyedMutex serializes transitions per entity within this process.
// Cross-instance serialization is backed by the optimistic version check in
// Store.Commit (and, at the API layer, the redis entity lock).
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
