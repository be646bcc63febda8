package entity

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("entity: not found")
	ErrVersionConflict = errors.New("entity: version conflict")
	ErrAlreadyExists   = errors.New("entity: already exists")
)

// Repository is the persistence contract for governed entities.
//
// Save must enforce the optimistic version check: the stored entity's
// Version() must equal expectedVersion or ErrVersionConflict is returned.
// This is what serializes concurrent transitions on the same entity.
type Repository interface {
	Load(ctx context.Context, t Type, id string) (Workflowable, error)
	Create(ctx context.Context, w Workflowable) error
	Save(ctx context.Context, w Workflowable, expectedVersion int) error
}

// New returns an empty concrete entity for a type; used when decoding
// persisted documents.
func New(t Type) (Workflowable, bool) {
	switch t {
	case TypeAsset:
		return &Asset{Record: Record{Type: t}}, true
	case TypeBusinessRequest:
		return &BusinessRequest{Record: Record{Type: t}}, true
	case TypeContract:
		return &Contract{Record: Record{Type: t}}, true
	case TypeDeliverable:
		return &Deliverable{Record: Record{Type: t}}, true
	case TypeResource:
		return &Resource{Record: Record{Type: t}}, true
	default:
		return nil, false
	}
}
